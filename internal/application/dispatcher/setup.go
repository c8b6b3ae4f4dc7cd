package dispatcher

import (
	"fmt"
	"strings"

	"github.com/nv0skar/Noisier/internal/domain/endpoint"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
	"github.com/nv0skar/Noisier/pkg/placeholder"
	"github.com/nv0skar/Noisier/pkg/route"
)

// Check validates a query-backed definition. Problems that make the endpoint
// unusable are returned as a ConfigError; questionable but workable
// combinations are returned as warnings.
func Check(def *endpoint.Definition) (warnings []string, err error) {
	id := fmt.Sprintf("%s %s", def.Method, def.Route)
	op := def.Operation()

	conventional, ok := op.ConventionalMethod()
	if !ok {
		return nil, apperrors.NewConfigError(id, fmt.Sprintf(
			"the SQL query '%s' is not supported, please use only SELECT/INSERT/UPDATE/DELETE", def.QueryText()))
	}
	if conventional != def.Method {
		warnings = append(warnings, fmt.Sprintf(
			"the '%s' HTTP verb is not correct for the SQL %s operation in endpoint %s, the correct verb is %s",
			def.Method, op, id, conventional))
	}

	switch {
	case !def.RequiredAuth && len(def.AllowedRoles) > 0 && !onlyWildcard(def.AllowedRoles):
		warnings = append(warnings, fmt.Sprintf(
			"the endpoint %s does not require authentication but it restricts roles to %v, the roles will be ignored",
			id, def.AllowedRoles))
	case def.RequiredAuth && len(def.AllowedRoles) == 0:
		warnings = append(warnings, fmt.Sprintf(
			"the endpoint %s requires authentication but its list of allowed roles is empty, use [\"*\"] to allow every role",
			id))
	}

	sqlParams := placeholder.Extract(def.QueryText())
	if !def.RequiredAuth && contains(sqlParams, endpoint.LoggedIDParam) {
		warnings = append(warnings, fmt.Sprintf(
			"the endpoint %s uses $%s but does not require authentication, keep in mind that the logged user's ID may be NULL",
			id, endpoint.LoggedIDParam))
	}

	segments := strings.Split(strings.Trim(def.Route, "/"), "/")
	for _, seg := range segments[:len(segments)-1] {
		if strings.Contains(seg, route.Marker) {
			warnings = append(warnings, fmt.Sprintf(
				"the endpoint %s has a parameter in segment '%s', only a trailing parameter is filled from the URL", id, seg))
		}
	}

	if err := placeholder.ValidateCoverage(def); err != nil {
		return warnings, err
	}
	return warnings, nil
}

func onlyWildcard(roles []string) bool {
	return len(roles) == 1 && roles[0] == "*"
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
