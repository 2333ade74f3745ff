package main

import (
	_ "github.com/vanguardtable/vanguard/src/migration"
	"github.com/vanguardtable/vanguard/src/website"
)

func main() {
	website.WebsiteCommand.Execute()
}
