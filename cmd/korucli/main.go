// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/vkboot/gfx/vkr"
)

var indent = flag.Bool("indent", false, "Indent the JSON output")

func main() {
	flag.Parse()

	drv := vkr.NewVulkanDriver()
	instance, err := vkr.HeadlessInstance(drv, "korucli")
	if err != nil {
		log.Fatal(err)
	}
	defer drv.DestroyInstance(instance)

	infos, err := vkr.Inventory(drv, instance)
	if err != nil {
		log.Error(err)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(infos); err != nil {
		log.Error(err)
	}
}
