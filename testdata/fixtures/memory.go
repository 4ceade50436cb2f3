// Command memory is a test fixture exposing a known global at a fixed
// address: it prints the address of x and then loops, letting a watchpoint
// test locate x (through the binary's symbol table) and watch it for
// writes made by the periodic increment below.
package main

import (
	"fmt"
	"time"
)

var x int64 = 0xcafe

func main() {
	fmt.Printf("%x\n", &x)
	for {
		x++
		time.Sleep(100 * time.Millisecond)
	}
}
