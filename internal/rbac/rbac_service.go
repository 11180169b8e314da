package rbac

import (
	"context"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"
)

// ModelText is the domain scoped RBAC model: policies and role grants are
// both keyed by company.
const ModelText = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub, r.dom) && r.dom == p.dom && r.obj == p.obj && r.act == p.act
`

// Field positions of the company in p and g rules.
const (
	policyDomainField   = 1
	groupingDomainField = 2
)

func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(ModelText)
	if err != nil {
		return nil, err
	}
	return casbin.NewEnforcer(m)
}

type Service interface {
	// LoadCompanyPolicy replaces the company's rules with what is stored now.
	LoadCompanyPolicy(ctx context.Context, companyID string) error
	Enforce(ctx context.Context, req EnforceRequest) (bool, error)
	// RolesFor lists the role names granted to an employee inside a company.
	RolesFor(ctx context.Context, companyID, employeeID string) ([]string, error)
}

// service keeps one enforcer for all companies. A company's rules are loaded
// on first use and refreshed once they are older than policyTTL. A zero TTL
// reloads on every call.
//
// Repository reads run under the company's own lock only. mu guards the
// enforcer and loadedAt and is never held across I/O.
type service struct {
	repo      Repository
	enforcer  *casbin.Enforcer
	policyTTL time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	loadedAt map[string]time.Time

	companyMu    sync.Mutex
	companyLocks map[string]*sync.Mutex

	logger *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, policyTTL time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:         repo,
		enforcer:     enforcer,
		policyTTL:    policyTTL,
		now:          time.Now,
		loadedAt:     make(map[string]time.Time),
		companyLocks: make(map[string]*sync.Mutex),
		logger:       l,
	}
}

func (s *service) companyLock(companyID string) *sync.Mutex {
	s.companyMu.Lock()
	defer s.companyMu.Unlock()

	m, ok := s.companyLocks[companyID]
	if !ok {
		m = &sync.Mutex{}
		s.companyLocks[companyID] = m
	}
	return m
}

func (s *service) LoadCompanyPolicy(ctx context.Context, companyID string) error {
	m := s.companyLock(companyID)
	m.Lock()
	defer m.Unlock()

	return s.reload(ctx, companyID)
}

func (s *service) fresh(companyID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	at, ok := s.loadedAt[companyID]
	return ok && s.policyTTL > 0 && s.now().Sub(at) < s.policyTTL
}

func (s *service) ensureLoaded(ctx context.Context, companyID string) error {
	if s.fresh(companyID) {
		return nil
	}

	m := s.companyLock(companyID)
	m.Lock()
	defer m.Unlock()

	// Another caller may have finished the load while this one waited.
	if s.fresh(companyID) {
		return nil
	}
	return s.reload(ctx, companyID)
}

// reload must be called with the company lock held. The company's rules are
// fetched before any are dropped, so a failed fetch keeps the previous rules
// in place.
func (s *service) reload(ctx context.Context, companyID string) error {
	employeeRoles, err := s.repo.GetEmployeeRoles(ctx, companyID)
	if err != nil {
		return err
	}
	rolePerms, err := s.repo.GetRolePermissions(ctx, companyID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.enforcer.RemoveFilteredGroupingPolicy(groupingDomainField, companyID); err != nil {
		return err
	}
	if _, err := s.enforcer.RemoveFilteredPolicy(policyDomainField, companyID); err != nil {
		return err
	}
	delete(s.loadedAt, companyID)

	for _, er := range employeeRoles {
		if _, err := s.enforcer.AddGroupingPolicy(er.EmployeeID, er.RoleName, companyID); err != nil {
			return err
		}
	}
	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleName, companyID, rp.Resource, rp.Action); err != nil {
			return err
		}
	}
	s.loadedAt[companyID] = s.now()

	s.logger.Debug("rbac policy loaded",
		zap.String("company_id", companyID),
		zap.Int("employee_roles", len(employeeRoles)),
		zap.Int("role_permissions", len(rolePerms)),
	)
	return nil
}

func (s *service) Enforce(ctx context.Context, req EnforceRequest) (bool, error) {
	fields := []zap.Field{
		zap.String("employee_id", req.EmployeeID),
		zap.String("company_id", req.CompanyID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
	}

	if err := s.ensureLoaded(ctx, req.CompanyID); err != nil {
		s.logger.Error("rbac policy load failed", append(fields, zap.Error(err))...)
		return false, err
	}

	s.mu.RLock()
	allowed, err := s.enforcer.Enforce(req.EmployeeID, req.CompanyID, req.Resource, req.Action)
	s.mu.RUnlock()
	if err != nil {
		s.logger.Error("rbac enforce failed", append(fields, zap.Error(err))...)
		return false, err
	}

	s.logger.Debug("rbac enforce result", append(fields, zap.Bool("allowed", allowed))...)
	return allowed, nil
}

func (s *service) RolesFor(ctx context.Context, companyID, employeeID string) ([]string, error) {
	if err := s.ensureLoaded(ctx, companyID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enforcer.GetRolesForUserInDomain(employeeID, companyID), nil
}
