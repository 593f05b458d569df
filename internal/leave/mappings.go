package leave

import (
	"strings"

	"leavebot/internal/model"
)

// mappings holds the lookup tables derived from the leave-type list. They
// are rebuilt per call; the lists are small (a handful of types per
// employee).
type mappings struct {
	codeToDesc   map[string]string
	descToCode   map[string]string
	codeToPolicy map[string]int64
}

func buildMappings(types []model.LeaveType) mappings {
	m := mappings{
		codeToDesc:   make(map[string]string, len(types)),
		descToCode:   make(map[string]string, len(types)),
		codeToPolicy: make(map[string]int64, len(types)),
	}
	for _, lt := range types {
		if lt.Code != "" {
			m.codeToDesc[lt.Code] = lt.Description
			if policyID, ok := lt.PolicyDetailID.Int64(); ok {
				m.codeToPolicy[lt.Code] = policyID
			}
		}
		if lt.Description != "" {
			m.descToCode[lt.Description] = lt.Code
		}
	}
	return m
}

// Keyword groups recognized in leave-type descriptions. The match is a
// plain substring test against the upper-cased description, so a type like
// "Annual Leave (Unpaid)" lands in the annual group. This mirrors existing
// business logic; the imprecision is deliberate.
var groupKeywords = map[string]string{
	"sick":      "SICK",
	"casual":    "CASUAL",
	"annual":    "ANNUAL",
	"emergency": "EMERGENCY",
}

func buildGroups(types []model.LeaveType) map[string]map[string]struct{} {
	groups := make(map[string]map[string]struct{})
	for _, lt := range types {
		desc := strings.ToUpper(lt.Description)
		for group, keyword := range groupKeywords {
			if !strings.Contains(desc, keyword) {
				continue
			}
			if groups[group] == nil {
				groups[group] = make(map[string]struct{})
			}
			groups[group][lt.Code] = struct{}{}
		}
	}
	return groups
}

// resolveCodes maps a tool argument to the set of leave codes it covers.
// Precedence: keyword group, exact code, exact description, then the
// argument taken literally as a code. An empty argument means no filter.
func resolveCodes(arg string, types []model.LeaveType) map[string]struct{} {
	if arg == "" {
		return nil
	}
	m := buildMappings(types)
	if group, ok := buildGroups(types)[strings.ToLower(arg)]; ok && len(group) > 0 {
		return group
	}
	if _, ok := m.codeToDesc[arg]; ok {
		return map[string]struct{}{arg: {}}
	}
	if code, ok := m.descToCode[arg]; ok {
		return map[string]struct{}{code: {}}
	}
	return map[string]struct{}{arg: {}}
}
