package main

import "github.com/goplus/nativebuild/cmd/nativebuild/internal"

func main() {
	internal.Execute()
}
