package breach

import "github.com/prometheus/client_golang/prometheus"

var lookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "vaultguard_breach_lookups_total",
	Help: "Breach lookups by result.",
}, []string{"result"})

var domainLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "vaultguard_domain_lookups_total",
	Help: "Domain breach lookups by result.",
}, []string{"result"})

func init() {
	prometheus.MustRegister(lookupsTotal, domainLookupsTotal)
}
