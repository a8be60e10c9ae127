// cmd/claim-intake/main.go
package main

func main() {
	Execute()
}
