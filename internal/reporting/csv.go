package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the outcome distributions as CSV string.
func RenderCSV(rows []DistributionRow) string {
	var sb strings.Builder

	sb.WriteString("metric,mean,median,std_dev,p5,p25,p75,p95,min,max\n")
	for _, d := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			d.Metric,
			d.Mean,
			d.Median,
			d.StdDev,
			d.P5,
			d.P25,
			d.P75,
			d.P95,
			d.Min,
			d.Max,
		))
	}

	return sb.String()
}
