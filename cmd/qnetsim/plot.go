package main

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"qnetsim/sim"
)

// writeHistogram renders the basis-state probability distribution as a
// bar chart. Every basis state is plotted, so this is only sensible for
// the small qubit counts the simulator targets anyway.
func writeHistogram(res *sim.Result, path string) error {
	p := plot.New()
	p.Title.Text = "Basis-state probabilities"
	p.Y.Label.Text = "probability"
	p.Y.Min = 0

	values := make(plotter.Values, len(res.Probabilities))
	labels := make([]string, len(res.Probabilities))
	for i, prob := range res.Probabilities {
		values[i] = prob
		labels[i] = res.Label(i)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(labels...)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
