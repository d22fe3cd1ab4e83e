package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clause-rag/internal/models"
)

// SeedDir writes the standard fair-contract set to dir, one JSON file per
// contract, in the shape LoadDir reads back. It bootstraps a working corpus
// so the engine can be exercised before a curated database exists.
func SeedDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating corpus directory: %w", err)
	}
	for i, contract := range SeedContracts() {
		name := fmt.Sprintf("%s_%d.json", strings.ReplaceAll(strings.ToLower(contract.Type), " ", "_"), i+1)
		data, err := json.MarshalIndent(contract, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding contract %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("writing contract %s: %w", name, err)
		}
	}
	return nil
}

// SeedContracts returns the built-in standard contracts. These represent
// industry best practices and carry expert-assigned fairness scores.
func SeedContracts() []Contract {
	return []Contract{
		{
			Type:        "Freelance Agreement",
			RiskLevel:   models.RiskLow,
			Description: "Industry standard freelance services agreement",
			Clauses: map[string]ClauseEntry{
				"termination": {
					Text: "Either party may terminate this Agreement with thirty (30) days written notice. Upon termination, Client shall pay Freelancer for all work completed through the termination date.",
					KeyTerms: map[string]any{
						"notice_period_days":     30,
						"notice_required_by":     "both parties",
						"payment_on_termination": "for work completed",
						"fairness_score":         9,
					},
					Benchmark: "30 days is standard across industry",
				},
				"payment": {
					Text: "Client agrees to pay Freelancer the fees specified in Statement of Work, payable within fifteen (15) business days of invoice receipt. Late payments accrue interest at 1.5% per month.",
					KeyTerms: map[string]any{
						"payment_terms_days": 15,
						"late_fee":           "1.5% per month",
						"fairness_score":     9,
					},
					Benchmark: "Net-15 to Net-30 is standard",
				},
				"intellectual_property": {
					Text: "Upon receipt of full payment, Freelancer grants Client all rights to final deliverables. Freelancer retains rights to preliminary work, techniques, and may use completed work in portfolio with Client approval.",
					KeyTerms: map[string]any{
						"transfer_trigger":   "upon full payment",
						"scope":              "final deliverables only",
						"freelancer_retains": "preliminary work, techniques, portfolio rights",
						"fairness_score":     8,
					},
					Benchmark: "Transfer on payment is fair; portfolio rights standard",
				},
				"liability": {
					Text: "Each party's total liability shall not exceed the total fees paid under this Agreement. Neither party liable for indirect or consequential damages.",
					KeyTerms: map[string]any{
						"cap":                    "fees paid",
						"mutual":                 true,
						"excludes_consequential": true,
						"fairness_score":         8,
					},
					Benchmark: "Capped, mutual liability is standard",
				},
			},
		},
		{
			Type:        "Employment Agreement",
			RiskLevel:   models.RiskLow,
			Description: "Standard full-time employment contract",
			Clauses: map[string]ClauseEntry{
				"termination": {
					Text: "Either party may terminate employment with sixty (60) days written notice. In case of termination by Employer without cause, Employee entitled to sixty (60) days severance pay.",
					KeyTerms: map[string]any{
						"notice_period_days": 60,
						"severance":          "60 days pay",
						"fairness_score":     8,
					},
					Benchmark: "60-90 days notice with severance is standard",
				},
				"compensation": {
					Text: "Employee shall receive annual salary of $[Amount], paid bi-weekly. Eligible for annual performance bonus up to 15% of base salary.",
					KeyTerms: map[string]any{
						"payment_schedule": "bi-weekly",
						"bonus_potential":  "15%",
						"fairness_score":   9,
					},
					Benchmark: "Bi-weekly pay is standard; 10-20% bonus typical",
				},
				"non_compete": {
					Text: "For twelve (12) months after termination, Employee agrees not to work for direct competitors in same role within 50-mile radius.",
					KeyTerms: map[string]any{
						"duration_months":  12,
						"geographic_scope": "50 miles",
						"fairness_score":   7,
					},
					Benchmark: "12 months is reasonable; should be limited geographically and by role",
				},
			},
		},
		{
			Type:        "Non-Disclosure Agreement",
			RiskLevel:   models.RiskLow,
			Description: "Mutual NDA with balanced terms",
			Clauses: map[string]ClauseEntry{
				"term": {
					Text: "This Agreement shall remain in effect for two (2) years from the Effective Date. Confidentiality obligations survive termination for two (2) additional years.",
					KeyTerms: map[string]any{
						"agreement_term_years":           2,
						"confidentiality_survival_years": 2,
						"fairness_score":                 9,
					},
					Benchmark: "2-3 year term with 2-5 year survival is standard",
				},
				"obligations": {
					Text: "Receiving Party shall use same degree of care to protect Confidential Information as it uses for its own confidential information, but no less than reasonable care.",
					KeyTerms: map[string]any{
						"standard_of_care": "reasonable care",
						"mutual":           true,
						"fairness_score":   9,
					},
					Benchmark: "Reasonable care standard is fair and enforceable",
				},
				"return_of_materials": {
					Text: "Upon termination or upon request, Receiving Party shall promptly return or destroy all Confidential Information and certify destruction in writing.",
					KeyTerms: map[string]any{
						"return_required":        true,
						"destruction_option":     true,
						"certification_required": true,
						"fairness_score":         9,
					},
					Benchmark: "Return or destroy with certification is standard",
				},
			},
		},
		{
			Type:        "SaaS Agreement",
			RiskLevel:   models.RiskLow,
			Description: "Standard software-as-a-service terms",
			Clauses: map[string]ClauseEntry{
				"data_ownership": {
					Text: "Customer retains all ownership rights to Customer Data. Provider has limited license to use Customer Data solely to provide Services.",
					KeyTerms: map[string]any{
						"customer_owns_data": true,
						"provider_license":   "limited to service provision",
						"fairness_score":     10,
					},
					Benchmark: "Customer data ownership is essential",
				},
				"liability": {
					Text: "Provider's total liability shall not exceed fees paid in the twelve (12) months prior to the claim. Neither party liable for indirect, incidental, or consequential damages.",
					KeyTerms: map[string]any{
						"cap":                    "12 months of fees",
						"excludes_consequential": true,
						"fairness_score":         7,
					},
					Benchmark: "12-month fee cap is standard for SaaS",
				},
				"fees": {
					Text: "Customer shall pay annual subscription fee as specified in Order Form. Fees may increase by up to 5% annually with ninety (90) days notice.",
					KeyTerms: map[string]any{
						"payment_frequency":          "annual",
						"price_increase_cap":         "5% per year",
						"price_increase_notice_days": 90,
						"fairness_score":             8,
					},
					Benchmark: "Capped price increases with notice is fair",
				},
			},
		},
		{
			Type:        "Consulting Agreement",
			RiskLevel:   models.RiskLow,
			Description: "Professional services consulting agreement",
			Clauses: map[string]ClauseEntry{
				"termination": {
					Text: "Either party may terminate with forty-five (45) days written notice. Client shall pay for all services rendered through termination date.",
					KeyTerms: map[string]any{
						"notice_period_days":     45,
						"payment_on_termination": "for services rendered",
						"fairness_score":         8,
					},
					Benchmark: "30-60 days notice is standard for consulting",
				},
				"payment": {
					Text: "Client pays Consultant at rates specified in Statement of Work, invoiced monthly. Payment due within thirty (30) days of invoice date.",
					KeyTerms: map[string]any{
						"payment_terms_days":  30,
						"invoicing_frequency": "monthly",
						"fairness_score":      8,
					},
					Benchmark: "Net-30 is standard for B2B consulting",
				},
			},
		},
		{
			Type:        "Contractor Agreement",
			RiskLevel:   models.RiskLow,
			Description: "Independent contractor agreement",
			Clauses: map[string]ClauseEntry{
				"termination": {
					Text: "Either party may terminate this Agreement with fourteen (14) days written notice for convenience, or immediately for material breach.",
					KeyTerms: map[string]any{
						"notice_period_days":    14,
						"immediate_termination": "material breach only",
						"fairness_score":        7,
					},
					Benchmark: "14 days is acceptable for short-term contracts; 30+ days better for long-term",
				},
				"warranty": {
					Text: "Contractor warrants work will be performed in professional and workmanlike manner. Contractor will correct any defects in work for ninety (90) days after delivery at no additional charge.",
					KeyTerms: map[string]any{
						"warranty_period_days": 90,
						"correction_cost":      "no additional charge",
						"fairness_score":       8,
					},
					Benchmark: "90-day workmanship warranty is standard",
				},
			},
		},
	}
}
