package tools

import "leavebot/internal/ai"

// Catalog returns the tool definitions sent with every model request. The
// shapes follow the provider's function-calling convention exactly: a
// "function" type, a name, a description, and a JSON-Schema parameters
// object with named properties and a required-subset list.
func (r *Registry) Catalog() []ai.ToolDefinition {
	return []ai.ToolDefinition{
		function(TotalLeaveTaken,
			"Returns total leave days taken, optionally filtered by leave code or group.",
			properties{
				"leave_code": stringProp("Leave code or group (e.g. 'AL' or 'sick')"),
			}),
		function(LeavesByType,
			"Returns a dict of leave codes and total days taken for each.",
			properties{}),
		function(AvailableLeaveTypes,
			"Lists all leave types available for the employee.",
			properties{}),
		function(LeaveTypeBalance,
			"Returns leave balance for a specific leave code or description.",
			properties{
				"leave_code": stringProp("Leave code or description"),
			}, "leave_code"),
		function(YearsOfService,
			"Returns number of years the employee has been with the company.",
			properties{}),
		function(EmployeeContact,
			"Returns the contact summary for the employee.",
			properties{}),
		function(ManagerContact,
			"Returns the manager's contact information.",
			properties{}),
		function(IsOnLeaveToday,
			"Returns whether the employee is on leave today.",
			properties{}),
		function(RecentLeaves,
			"Returns the most recent leave applications.",
			properties{
				"count": integerProp("Number of records to return"),
			}),
		function(AirTicketInfo,
			"Returns air ticket eligibility information.",
			properties{
				"leave_code": stringProp("Optional leave code to check"),
			}),
		function(SearchPolicy,
			"Search HR policy for answers to questions not covered by API.",
			properties{
				"question": stringProp("HR or policy question"),
			}, "question"),
		function(UnapprovedLeaves,
			"Returns leave applications that are not approved, optionally filtered by status.",
			properties{
				"status": stringProp("Exact status to filter by (e.g. 'Pending')"),
			}),
	}
}

type properties map[string]any

func function(name Name, description string, props properties, required ...string) ai.ToolDefinition {
	params := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		params["required"] = required
	}
	return ai.ToolDefinition{
		Type: "function",
		Function: ai.FunctionSchema{
			Name:        string(name),
			Description: description,
			Parameters:  params,
		},
	}
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func integerProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}
