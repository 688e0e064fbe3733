package ingest

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "rxqpoll"

// collector implements prometheus.Collector, reading counters on each scrape.
type collector struct {
	ing *Ingest

	workerPackets    *prometheus.Desc
	workerBytes      *prometheus.Desc
	workerInspected  *prometheus.Desc
	workerSkipped    *prometheus.Desc
	workerEmptyPolls *prometheus.Desc
	workerValidPolls *prometheus.Desc

	portPackets *prometheus.Desc
	portBytes   *prometheus.Desc
	portMissed  *prometheus.Desc
	portErrors  *prometheus.Desc
	portNoMbuf  *prometheus.Desc

	poolAvailable *prometheus.Desc
	poolInUse     *prometheus.Desc
}

// Collector returns a prometheus.Collector that exports worker, port, and pool counters.
func (ing *Ingest) Collector() prometheus.Collector {
	workerLabels := []string{"port", "queue", "lcore"}
	portLabels := []string{"port", "name"}
	return &collector{
		ing: ing,

		workerPackets: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "worker", "packets_total"),
			"Packets received by the worker.",
			workerLabels, nil,
		),
		workerBytes: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "worker", "bytes_total"),
			"Octets received by the worker.",
			workerLabels, nil,
		),
		workerInspected: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "worker", "inspected_total"),
			"Packets whose first two octets were inspected.",
			workerLabels, nil,
		),
		workerSkipped: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "worker", "skipped_total"),
			"Packets too short to inspect.",
			workerLabels, nil,
		),
		workerEmptyPolls: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "worker", "empty_polls_total"),
			"Polls that received no packet.",
			workerLabels, nil,
		),
		workerValidPolls: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "worker", "valid_polls_total"),
			"Polls that received at least one packet.",
			workerLabels, nil,
		),

		portPackets: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "port", "rx_packets_total"),
			"Packets received by the port.",
			portLabels, nil,
		),
		portBytes: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "port", "rx_bytes_total"),
			"Octets received by the port.",
			portLabels, nil,
		),
		portMissed: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "port", "rx_missed_total"),
			"Packets dropped because an RX queue was full.",
			portLabels, nil,
		),
		portErrors: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "port", "rx_errors_total"),
			"Erroneous received packets.",
			portLabels, nil,
		),
		portNoMbuf: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "port", "rx_nombuf_total"),
			"Packet buffer allocation failures.",
			portLabels, nil,
		),

		poolAvailable: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "pool", "available"),
			"Packet buffers available in the pool.",
			nil, nil,
		),
		poolInUse: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "pool", "in_use"),
			"Packet buffers in use.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.workerPackets
	ch <- c.workerBytes
	ch <- c.workerInspected
	ch <- c.workerSkipped
	ch <- c.workerEmptyPolls
	ch <- c.workerValidPolls
	ch <- c.portPackets
	ch <- c.portBytes
	ch <- c.portMissed
	ch <- c.portErrors
	ch <- c.portNoMbuf
	ch <- c.poolAvailable
	ch <- c.poolInUse
}

// Collect implements prometheus.Collector.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	counter := func(desc *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), labels...)
	}

	for _, w := range c.ing.workers {
		a := w.Assignment()
		labels := []string{strconv.Itoa(a.Port), strconv.Itoa(a.Queue), strconv.Itoa(a.LCore.ID())}
		cnt, ls := w.Counters(), w.ThreadLoadStat()
		counter(c.workerPackets, cnt.Packets, labels...)
		counter(c.workerBytes, cnt.Bytes, labels...)
		counter(c.workerInspected, cnt.Inspected, labels...)
		counter(c.workerSkipped, cnt.Skipped, labels...)
		counter(c.workerEmptyPolls, ls.EmptyPolls, labels...)
		counter(c.workerValidPolls, ls.ValidPolls, labels...)
	}

	for _, dev := range c.ing.env.Ports {
		labels := []string{strconv.Itoa(dev.ID()), dev.Name()}
		stats := dev.Stats()
		counter(c.portPackets, stats.RxPackets, labels...)
		counter(c.portBytes, stats.RxBytes, labels...)
		counter(c.portMissed, stats.RxMissed, labels...)
		counter(c.portErrors, stats.RxErrors, labels...)
		counter(c.portNoMbuf, stats.RxNoMbuf, labels...)
	}

	ch <- prometheus.MustNewConstMetric(c.poolAvailable, prometheus.GaugeValue, float64(c.ing.pool.CountAvailable()))
	ch <- prometheus.MustNewConstMetric(c.poolInUse, prometheus.GaugeValue, float64(c.ing.pool.CountInUse()))
}
