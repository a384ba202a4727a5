package output

import (
	"fmt"

	"github.com/incometax/taxcalc/internal/domain"
)

// DefaultAssumptions lists the modelling assumptions rendered in detailed outputs.
var DefaultAssumptions = []string{
	"Rebate is granted in full up to its cap when total income is within the limit; no marginal relief",
	"Surcharge applies at the band rate on the whole tax; no marginal relief at band thresholds",
	"House property loss is set off against other heads under the old regime only",
	"Deductions are limited to gross total income",
	"Capital gains special rates and the long-term equity exemption come from the rule book",
	"Monthly TDS is one twelfth of the annualised liability",
}

// GenerateAssumptions describes the configured limits of one year.
func GenerateAssumptions(year domain.TaxYear, rules domain.YearRules) []string {
	l := rules.Limits
	return []string{
		fmt.Sprintf("Rules for financial year %s", year),
		fmt.Sprintf("Health and education cess: %s of tax and surcharge", FormatPercentage(rules.CessRate)),
		fmt.Sprintf("Self-occupied interest cap: %s", FormatCurrency(l.SelfOccupiedInterestCap)),
		fmt.Sprintf("House property loss set-off cap: %s", FormatCurrency(l.HousePropertyLossSetOffCap)),
		fmt.Sprintf("Gratuity exemption cap: %s", FormatCurrency(l.GratuityCap)),
		fmt.Sprintf("Leave encashment exemption cap: %s", FormatCurrency(l.LeaveEncashmentCap)),
		fmt.Sprintf("Long-term equity gains exempt up to %s, then taxed at %s",
			FormatCurrency(l.LongTermEquityExemption), FormatPercentage(l.LongTermEquityRate)),
		fmt.Sprintf("Short-term equity gains taxed at %s", FormatPercentage(l.ShortTermEquityRate)),
	}
}
