/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package main

import "github.com/josephgoksu/agentwing/cmd"

func main() {
	cmd.Execute()
}
