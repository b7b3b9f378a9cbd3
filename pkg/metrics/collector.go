package metrics

import (
	"time"

	"github.com/logjamd/logjamd/pkg/registry"
)

// Collector periodically samples a registry's open vaults and publishes
// their document counts as gauges, the same polling shape the original
// manager-backed collector used for cluster state.
type Collector struct {
	registry *registry.Registry
	stopCh   chan struct{}
}

// NewCollector creates a new metrics collector over reg.
func NewCollector(reg *registry.Registry) *Collector {
	return &Collector{
		registry: reg,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics every 15 seconds, in a background
// goroutine, until Stop is called.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	names := c.registry.Names()
	VaultsOpen.Set(float64(len(names)))

	for _, name := range names {
		v, err := c.registry.Produce(name)
		if err != nil {
			continue
		}
		ids, err := v.AllIDs()
		if err != nil {
			continue
		}
		VaultDocuments.WithLabelValues(name).Set(float64(ids.Len()))
	}
}
