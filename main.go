package main

import "github.com/ValentinKolb/dProp/cmd"

func main() {
	cmd.Execute()
}
