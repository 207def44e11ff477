package main

func main() {
	x := foo(1)
	if x > 2 {
		bar()
	}
}
