// Package main provides the aeo command line tool.
//
// Usage:
//
//	aeo compare --snippet-a "..." --snippet-b "..."
//	aeo normalize < reply.txt
package main

func main() {
	Execute()
}
