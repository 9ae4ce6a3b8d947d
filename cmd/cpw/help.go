package main

import (
	"fmt"

	"oss.terrastruct.com/cpw/lib/xmain"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `Usage:
  %s [--debug] [--units um] doc.json [routed.json]

%[1]s plans every interconnect requested in doc.json against the design it
carries and writes the routed document back out, planned traces included.
Use - to have %[1]s read from stdin or write to stdout.

Dimensions in routing options are bare numbers in the design unit, or
strings with an explicit suffix such as "250 um" or "1.2 mm".

Flags:
%s
- $CPW_TIMEOUT: seconds granted to a routing run before it is cancelled.

Subcommands:
  %[1]s version - Print the version
`, ms.Name, ms.Opts.Help())
}
