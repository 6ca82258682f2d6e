package main

import (
	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/models/ctl"
	"github.com/meshx-project/meshx/pkg/models/hsl"
	"github.com/meshx-project/meshx/pkg/models/lc"
	"github.com/meshx-project/meshx/pkg/models/level"
	"github.com/meshx-project/meshx/pkg/models/lightness"
	"github.com/meshx-project/meshx/pkg/models/location"
	"github.com/meshx-project/meshx/pkg/models/onoff"
	"github.com/meshx-project/meshx/pkg/models/power"
	"github.com/meshx-project/meshx/pkg/models/property"
	"github.com/meshx-project/meshx/pkg/models/xyl"
)

// stateChangeKeys lists every family adapter's EL_STATE_CH key, letting a
// rules script react to any model regardless of which families the running
// board composes.
func stateChangeKeys() []bus.EventKey {
	return []bus.EventKey{
		onoff.StateChangeKey, level.StateChangeKey, power.StateChangeKey, location.StateChangeKey,
		property.StateChangeKey, lightness.StateChangeKey, ctl.StateChangeKey, hsl.StateChangeKey,
		xyl.StateChangeKey, lc.StateChangeKey,
	}
}
