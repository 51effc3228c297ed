// Bootcon is a boot-loader style text console. It runs a small command shell
// over a line editor on an ANSI terminal, a tcell screen, a serial port or an
// in-memory text screen.
package main

import (
	"os"

	"src.bootcon.sh/pkg/prog"
	"src.bootcon.sh/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args, shell.Program{}))
}
