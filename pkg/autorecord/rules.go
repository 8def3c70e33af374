package autorecord

import (
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
)

// Verdict explains an auto-record decision. Reason is empty when recording
// is allowed, otherwise it names the first predicate that rejected.
type Verdict struct {
	Record bool
	Reason string
}

func reject(reason string) Verdict {
	return Verdict{Reason: reason}
}

// ShouldAutoRecord decides whether a crawl result is written to the price
// history. Predicates run in order and the first failure wins, so the
// returned reason is deterministic for a given result and config.
func ShouldAutoRecord(cfg *model.AutoRecordConfig, result *model.CrawlResult, domainName string) Verdict {
	if !cfg.Enabled {
		return reject("auto-record disabled")
	}
	if cfg.RequireInStock && !result.InStock {
		return reject("result is out of stock")
	}
	if !cfg.CurrencyAllowed(result.Currency) {
		return reject("currency " + result.Currency + " not whitelisted")
	}
	if len(cfg.AllowedDomains) > 0 && !cfg.AllowedDomains.Contains(domainName) {
		return reject("domain " + domainName + " not allowed")
	}

	sources := result.PriceSources()
	if len(cfg.AllowedSources) > 0 && !cfg.AllowedSources.Intersects(sources) {
		return reject("no allowed price source")
	}

	if cfg.MinConfidence > 0 && containsSource(sources, model.MLPriceSource) {
		conf, ok := result.MLConfidence()
		if !ok || conf < cfg.MinConfidence {
			return reject("ml confidence below threshold")
		}
	}

	if !result.Price.IsPositive() {
		return reject("price is not positive")
	}
	return Verdict{Record: true}
}

func containsSource(sources []string, want string) bool {
	for _, s := range sources {
		if s == want {
			return true
		}
	}
	return false
}
