/*
Copyright © 2026 JACOB ARTHURS
*/
package main

import "github.com/jacobarthurs/mysqlplan/cmd"

func main() {
	cmd.Execute()
}
