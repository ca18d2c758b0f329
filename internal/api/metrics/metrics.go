// Package metrics defines and registers all custom Prometheus metrics for
// the catalog API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// ProductsCreatedTotal counts newly created products.
// Label:
//   - category: the category name of the created product
var ProductsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "products_created_total",
		Help:      "Total number of products created, by category.",
	},
	[]string{"category"},
)

// MutationsDeniedTotal counts mutations rejected by the ownership rule.
// Label:
//   - operation: "update" or "delete"
var MutationsDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_denied_total",
		Help:      "Total number of product mutations denied by the ownership check.",
	},
	[]string{"operation"},
)

// LoginsTotal counts successful logins.
var LoginsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of successful logins.",
	},
)
