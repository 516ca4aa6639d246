// Package main provides the CLI entrypoint for toaststack.
package main

func main() {
	Execute()
}
