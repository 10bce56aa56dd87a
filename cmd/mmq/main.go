/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/ssargent/mmqueue/cmd/mmq/cmd"
)

func main() {
	cmd.Execute()
}
