package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kasuganosora/daqnet/pkg/encoding"
	"github.com/kasuganosora/daqnet/pkg/equipment"
	"github.com/kasuganosora/daqnet/pkg/optimizer"
)

// writeReport 输出最优网络与成本构成
func writeReport(w io.Writer, res *optimizer.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "run\t%s\n", res.RunID)
	fmt.Fprintf(tw, "seed\t%d\n", res.Seed)
	fmt.Fprintf(tw, "generations\t%d (converged=%t canceled=%t)\n", res.Generations, res.Converged, res.Canceled)
	fmt.Fprintf(tw, "duration\t%v (%d evaluations)\n", res.Duration, res.Evaluations)
	if n := len(res.ConvergenceHistory); n > 0 {
		fmt.Fprintf(tw, "spread\t%.4f\n", res.ConvergenceHistory[n-1])
	}
	fmt.Fprintf(tw, "genes\t%s\n", res.Best)
	fmt.Fprintln(tw)

	costs := make(map[encoding.PointKey]float64)
	if res.Breakdown != nil {
		for _, gc := range res.Breakdown.Groups {
			costs[gc.Key] = gc.Total
		}
	}

	for _, g := range res.Network.Groups {
		fmt.Fprintf(tw, "acquisition %s\t%s at %s\tcost %s\n", g.Key, g.Acquisition.Name, g.Vertex, formatCost(costs[g.Key]))
		for _, l := range g.Links {
			zones := make([]string, len(l.Sections))
			for i, s := range l.Sections {
				zones[i] = fmt.Sprintf("%s<-%s@%s", s.Zone.Name, s.Device.Name, s.DeviceVertex)
			}
			fmt.Fprintf(tw, "  channel %s\t%s\t%s\n", l.Channel.Name, l.Channel.Topology, strings.Join(zones, ", "))
			if l.Err != nil {
				fmt.Fprintf(tw, "    route\tfailed: %v\n", l.Err)
				continue
			}
			fmt.Fprintf(tw, "    route\tcost %.2f, %d edges, longest leg %d\n", l.Route.Cost(), len(l.Route.EdgeSet()), l.Route.MaxHops())
		}
	}
	fmt.Fprintln(tw)

	if b := res.Breakdown; b != nil {
		fmt.Fprintf(tw, "server\t%s\n", formatCost(b.Server))
		for _, gc := range b.Groups {
			fmt.Fprintf(tw, "%s\tacquisition %s\tdevices %s\tconnections %s\n",
				gc.Key, formatCost(gc.Acquisition), formatCost(gc.Devices), formatCost(gc.Connections))
		}
		fmt.Fprintf(tw, "total\t%s\n", formatCost(b.Total))
		if b.OverBudget {
			fmt.Fprintln(tw, "budget\texceeded")
		}
	}
	return tw.Flush()
}

func formatCost(c float64) string {
	if equipment.IsUnacceptable(c) {
		return "unacceptable"
	}
	return fmt.Sprintf("%.2f", c)
}
