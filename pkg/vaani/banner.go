package vaani

import (
	"bytes"
	"os"

	"github.com/dimiro1/banner"
)

const EngineVersion = "dev"

func PrintBanner() {
	tpl := "{{ .Title \"VAANI\" \"\" 0 }}\nVersion: " + EngineVersion + "\n"
	banner.Init(os.Stdout, true, true, bytes.NewBufferString(tpl))
}
