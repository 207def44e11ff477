package main

import "fmt"

func bar() {
	fmt.Println("bar")
}
