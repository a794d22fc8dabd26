// Command irrelon-schema validates, flattens and exports schema declarations.
package main

func main() {
	Execute()
}
