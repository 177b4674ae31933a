// internal/catalog/catalog.go
package catalog

import (
	"github.com/Annany2002/cvm-baseprep/internal/domain"
)

// FallbackAlias qualifies columns of a table whose kind is not in the catalog.
const FallbackAlias = "t1"

// Registry is a read-only catalog of table kinds, kept in definition order.
type Registry struct {
	kinds []domain.TableKind
	index map[string]int
}

// New builds a registry from kinds. Later duplicates of an id are ignored.
func New(kinds []domain.TableKind) *Registry {
	r := &Registry{index: make(map[string]int, len(kinds))}
	for _, k := range kinds {
		if _, dup := r.index[k.ID]; dup {
			continue
		}
		r.index[k.ID] = len(r.kinds)
		r.kinds = append(r.kinds, cloneKind(k))
	}
	return r
}

// Default returns the registry of the CVM base preparation tables.
func Default() *Registry {
	return New(defaultKinds)
}

// Lookup returns the kind with the given id.
func (r *Registry) Lookup(id string) (domain.TableKind, bool) {
	i, ok := r.index[id]
	if !ok {
		return domain.TableKind{}, false
	}
	return cloneKind(r.kinds[i]), true
}

// Alias returns the alias of the kind, or FallbackAlias when the id is unknown.
func (r *Registry) Alias(id string) string {
	if i, ok := r.index[id]; ok && r.kinds[i].Alias != "" {
		return r.kinds[i].Alias
	}
	return FallbackAlias
}

// Columns returns the output columns of the kind, or nil when unknown.
func (r *Registry) Columns(id string) []string {
	k, ok := r.Lookup(id)
	if !ok {
		return nil
	}
	return k.Columns
}

// All returns every kind in catalog order.
func (r *Registry) All() []domain.TableKind {
	return r.ListAvailable(nil)
}

// ListAvailable returns the kinds whose id is not in excluding, in catalog order.
func (r *Registry) ListAvailable(excluding map[string]bool) []domain.TableKind {
	out := make([]domain.TableKind, 0, len(r.kinds))
	for _, k := range r.kinds {
		if excluding[k.ID] {
			continue
		}
		out = append(out, cloneKind(k))
	}
	return out
}

func cloneKind(k domain.TableKind) domain.TableKind {
	k.Columns = append([]string(nil), k.Columns...)
	return k
}

var defaultKinds = []domain.TableKind{
	{ID: "active", Label: "ACTIVE CUSTOMERS", Alias: "act", FormType: domain.FormActiveCustomers,
		Columns: []string{"msisdn", "activation_date", "last_activity", "status"}},
	{ID: "vlr", Label: "VLR ATTACHED CUSTOMERS", Alias: "vlr", FormType: domain.FormVLRAttached,
		Columns: []string{"msisdn", "vlr_id", "attach_date", "detach_date"}},
	{ID: "registered", Label: "REGISTERED MPESA", Alias: "reg", FormType: domain.FormDateFormat,
		Columns: []string{"msisdn", "registration_date", "kyc_status"}},
	{ID: "balance", Label: "BALANCE THRESHOLD", Alias: "bal", FormType: domain.FormBalanceThreshold,
		Columns: []string{"msisdn", "balance", "last_update"}},
	{ID: "targeted", Label: "TARGETED CUSTOMERS", Alias: "tgt", FormType: domain.FormTargetedCustomers,
		Columns: []string{"msisdn", "campaign_id", "target_date"}},
	{ID: "rewarded", Label: "REWARDED CUSTOMERS", Alias: "rwd", FormType: domain.FormDateFormat,
		Columns: []string{"msisdn", "reward_date", "reward_amount"}},
	{ID: "cbe_topup", Label: "CBE TOP UP", Alias: "cbe", FormType: domain.FormDateFormat,
		Columns: []string{"msisdn", "topup_date", "amount", "channel"}},
	{ID: "reward_from_account", Label: "REWARD FROM ACCOUNT", Alias: "rfa", FormType: domain.FormRewardFromAccount,
		Columns: []string{"msisdn", "account_number", "reward_date"}},
}
