package domain

import (
	"net/url"
	"strings"
)

// PortalRoutes holds the external application each family of roles is sent
// to once its account is ready.
type PortalRoutes struct {
	HQ        string
	Franchise string
	Driver    string
	Customer  string
	Default   string
}

// ProductionPortalRoutes are the public portal domains.
func ProductionPortalRoutes() PortalRoutes {
	return PortalRoutes{
		HQ:        "https://hq.stafull.com",
		Franchise: "https://franchise.stafull.com",
		Driver:    "https://driver.stafull.com",
		Customer:  "https://my.stafull.com",
		Default:   "https://my.stafull.com",
	}
}

// LocalPortalRoutes point at the portal dev servers on localhost.
func LocalPortalRoutes() PortalRoutes {
	return PortalRoutes{
		HQ:        "http://localhost:5174",
		Franchise: "http://localhost:5175",
		Driver:    "http://localhost:5176",
		Customer:  "http://localhost:5177",
		Default:   "http://localhost:5177",
	}
}

// URL returns the portal for role. Every role has an arm; RoleUnknown and any
// value outside the enum fall through to Default.
func (p PortalRoutes) URL(role Role) string {
	switch role {
	case RoleHoldingsAdmin:
		return p.HQ
	case RoleFranchiseOwner, RoleManager:
		return p.Franchise
	case RoleDriver:
		return p.Driver
	case RoleCustomer, RoleEmployer, RoleEmployee, RoleInvestor, RoleSBALender:
		return p.Customer
	case RoleUnknown:
		return p.Default
	default:
		return p.Default
	}
}

// AllowsReturn reports whether raw is an absolute URL on one of the portal
// hosts, and so may be used as a post-login return target.
func (p PortalRoutes) AllowsReturn(raw string) bool {
	target, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || target.Host == "" {
		return false
	}
	if target.Scheme != "https" && target.Scheme != "http" {
		return false
	}
	for _, candidate := range []string{p.HQ, p.Franchise, p.Driver, p.Customer, p.Default} {
		known, err := url.Parse(candidate)
		if err != nil {
			continue
		}
		if strings.EqualFold(known.Host, target.Host) && known.Scheme == target.Scheme {
			return true
		}
	}
	return false
}
