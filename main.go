/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/daffahilmyf/go-impl-audit-trail/cmd"

func main() {
	cmd.Execute()
}
