package runner

import "github.com/projectdiscovery/gologger"

const banner = `
  __                                 __
 / /_________  _____________ _____  / /__
/ __/ ___/ __ \/ ___/ ___/ __ '/ __ \/ //_/
/ /_/ /__/ /_/ / /  / /  / /_/ / / / / ,<
\__/\___/ .___/_/  /_/   \__,_/_/ /_/_/|_|
       /_/
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
}
