// Command dumpling runs the emotional dumpling-recipe wizard in the terminal,
// over HTTP or as an MCP server.
package main

func main() {
	Execute()
}
