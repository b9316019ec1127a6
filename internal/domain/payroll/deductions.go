package payroll

func NationalPension(income int64) int64 {
	if income <= 0 {
		return 0
	}
	base := float64(income)
	if base < NationalPensionMinBase {
		base = NationalPensionMinBase
	}
	if base > NationalPensionMaxBase {
		base = NationalPensionMaxBase
	}
	return floorWon(base * NationalPensionRate)
}

func HealthInsurance(income int64) int64 {
	if income <= 0 {
		return 0
	}
	base := float64(income)
	if base > HealthInsuranceMaxBase {
		base = HealthInsuranceMaxBase
	}
	return floorWon(base * HealthInsuranceRate)
}

func LongTermCare(healthInsurance int64) int64 {
	return floorWon(float64(healthInsurance) * LongTermCareRate)
}

func EmploymentInsurance(income int64) int64 {
	return floorWon(float64(income) * EmploymentInsuranceRate)
}

// IncomeTax approximates the simplified withholding table: the taxable month
// (income less the flat meal exemption) is annualised through the progressive
// brackets, brought back to a month, reduced per extra dependent and then by
// the labour income tax credit. It is not the official 2-D lookup table.
func IncomeTax(income int64, dependents int) int64 {
	taxable := income - MealTaxFreeLimit
	if taxable <= 0 {
		return 0
	}

	annual := float64(taxable) * 12
	tax := bracketTax(annual) / 12

	if dependents < DefaultDependents {
		dependents = DefaultDependents
	}
	tax -= float64(dependents-1) * DependentDeduction
	if tax <= 0 {
		return 0
	}

	if tax <= TaxCreditThreshold {
		tax *= 1 - TaxCreditLowRate
	} else {
		tax -= TaxCreditBase + (tax-TaxCreditThreshold)*TaxCreditHighRate
	}
	return floorWon(tax)
}

func bracketTax(annual float64) float64 {
	for _, bracket := range incomeTaxBrackets {
		if bracket.upTo == 0 || annual <= bracket.upTo {
			return bracket.offset + (annual-bracket.floor)*bracket.rate
		}
	}
	return 0
}

func LocalIncomeTax(incomeTax int64) int64 {
	return floorWon(float64(incomeTax) * LocalIncomeTaxRate)
}

// CalculateDeductions applies every statutory deduction to the month's income.
func CalculateDeductions(income int64, dependents int, other int64) DeductionSet {
	health := HealthInsurance(income)
	incomeTax := IncomeTax(income, dependents)
	set := DeductionSet{
		NationalPension:     NationalPension(income),
		HealthInsurance:     health,
		LongTermCare:        LongTermCare(health),
		EmploymentInsurance: EmploymentInsurance(income),
		IncomeTax:           incomeTax,
		LocalIncomeTax:      LocalIncomeTax(incomeTax),
	}
	if other > 0 {
		set.Other = other
	}
	set.Total = set.sum()
	return set
}
