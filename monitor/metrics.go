package monitor

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "magazine_catalog"

var (
	registerOnce sync.Once

	importRowsParsed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_rows_parsed_total",
		Help:      "Data rows read from magazine import files by outcome",
	}, []string{"outcome"})
	importEntities = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_entities_total",
		Help:      "Magazines and issues handled by the import executor by status",
	}, []string{"entity", "status"})
	importFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_failures_total",
		Help:      "Import transactions rolled back",
	})
	ocrDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ocr_duration_seconds",
		Help:      "Latency of table-of-contents recognition by provider",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 9),
	}, []string{"provider", "outcome"})
)

// Register adds the catalog collectors to the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(importRowsParsed, importEntities, importFailures, ocrDuration)
	})
}

// ObserveParse records the row outcome counts of one parsed file.
func ObserveParse(total, errored, warned int) {
	ok := total - errored - warned
	if ok < 0 {
		ok = 0
	}
	importRowsParsed.WithLabelValues("grouped").Add(float64(ok))
	importRowsParsed.WithLabelValues("error").Add(float64(errored))
	importRowsParsed.WithLabelValues("duplicate").Add(float64(warned))
}

// ObserveImport records the persisted counts of a committed import.
func ObserveImport(createdMagazines, skippedMagazines, createdIssues, skippedIssues int) {
	importEntities.WithLabelValues("magazine", "created").Add(float64(createdMagazines))
	importEntities.WithLabelValues("magazine", "existed").Add(float64(skippedMagazines))
	importEntities.WithLabelValues("issue", "created").Add(float64(createdIssues))
	importEntities.WithLabelValues("issue", "skipped").Add(float64(skippedIssues))
}

func IncImportFailure() { importFailures.Inc() }

func ObserveOcr(provider string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ocrDuration.WithLabelValues(provider, outcome).Observe(d.Seconds())
}
