package risk

import (
	"fmt"
	"strings"
)

// Violation names one limit breach.
type Violation struct {
	Code string
	Msg  string
}

// Decision is the outcome of evaluating a buy intent against the policy.
type Decision struct {
	Allowed    bool
	Violations []Violation
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// String summarizes the violations for logs and rejection reasons.
func (d Decision) String() string {
	if d.Allowed {
		return "allowed"
	}
	msgs := make([]string, len(d.Violations))
	for i, v := range d.Violations {
		msgs[i] = v.Msg
	}
	return strings.Join(msgs, "; ")
}

// Evaluate runs the exposure checks for opening a new position.
func Evaluate(p Policy, acct AccountState) Decision {
	d := Decision{Allowed: true}

	if acct.OpenPositions >= p.MaxPositions {
		d.add("TOO_MANY_POSITIONS",
			fmt.Sprintf("open positions %d >= max %d", acct.OpenPositions, p.MaxPositions))
	}

	reserve := acct.TotalValue.Mul(p.MinCashReservePct)
	if acct.Cash.LessThan(reserve) {
		d.add("CASH_RESERVE",
			fmt.Sprintf("cash %s below reserve %s", acct.Cash, reserve))
	}

	return d
}
