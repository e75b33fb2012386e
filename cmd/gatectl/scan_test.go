package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srg/gatelink/internal/session"
	"github.com/srg/gatelink/internal/testutils"
)

func TestPrintDevices(t *testing.T) {
	devices := map[string]session.DeviceInfo{
		"00:11:22:33:44:55": {ID: "00:11:22:33:44:55", Name: "GATE-SIM", RSSI: -52},
		"AA:BB:CC:DD:EE:FF": {ID: "AA:BB:CC:DD:EE:FF", Name: "GATE-3F2A", RSSI: -71},
	}

	t.Run("table output sorted by address", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printDevices(&out, devices, "table"))

		testutils.NewTextAsserter(t).Assert(out.String(), `
ADDRESS            NAME       RSSI
00:11:22:33:44:55  GATE-SIM   -52
AA:BB:CC:DD:EE:FF  GATE-3F2A  -71
`)
	})

	t.Run("json output", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printDevices(&out, devices, "json"))

		testutils.NewJSONAsserter(t).Assert(out.String(), `[
			{"ID":"00:11:22:33:44:55","Name":"GATE-SIM","RSSI":-52},
			{"ID":"AA:BB:CC:DD:EE:FF","Name":"GATE-3F2A","RSSI":-71}
		]`)
	})

	t.Run("empty result prints a notice", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printDevices(&out, nil, "table"))
		testutils.NewTextAsserter(t).Assert(out.String(), "No gate controllers found.")
	})
}
