package app

import (
	"github.com/vk/riglab/internal/registry"
	"github.com/vk/riglab/modules/ik"
)

// coreModules is the definitive list of all solver modules that are
// compiled into the riglab binary.
var coreModules = []registry.Module{
	&ik.Module{},
}
