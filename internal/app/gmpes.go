package app

import (
	"github.com/specialistvlad/hazgridgo/gmpes/boore_atkinson_2008"
	"github.com/specialistvlad/hazgridgo/gmpes/sadigh_1997"
	"github.com/specialistvlad/hazgridgo/gmpes/toro_2002"
	"github.com/specialistvlad/hazgridgo/internal/registry"
)

// coreModules is the definitive list of all ground-motion models that
// are compiled into the hazgridgo binary.
var coreModules = []registry.Module{
	&boore_atkinson_2008.Module{},
	&sadigh_1997.Module{},
	&toro_2002.Module{},
}
