package reporting

import (
	"sort"

	"community-console-service/internal/domain/models"
)

// FeeBilling 单个收费项目的收缴情况，金额按单价计
type FeeBilling struct {
	FeeScheduleID models.FlexibleID  `json:"fee_schedule_id"`
	Name          string             `json:"name"`
	Category      models.FeeCategory `json:"category"`
	UnitPrice     float64            `json:"unit_price"`
	Unit          string             `json:"unit"`
	Paid          int                `json:"paid"`
	Unpaid        int                `json:"unpaid"`
	Collected     float64            `json:"collected"`
	Outstanding   float64            `json:"outstanding"`
}

// CategoryBilling 按收费类别汇总
type CategoryBilling struct {
	Category    models.FeeCategory `json:"category"`
	Paid        int                `json:"paid"`
	Unpaid      int                `json:"unpaid"`
	Collected   float64            `json:"collected"`
	Outstanding float64            `json:"outstanding"`
}

// BillingSummary 管理报表中的收费部分
type BillingSummary struct {
	Fees                []FeeBilling      `json:"fees"`
	Categories          []CategoryBilling `json:"categories"`
	HouseholdsWithDebt  int               `json:"households_with_debt"`
	HouseholdsFullyPaid int               `json:"households_fully_paid"`
	OrphanReceipts      int               `json:"orphan_receipts"` // 引用了不存在的收费项目
	TotalCollected      float64           `json:"total_collected"`
	TotalOutstanding    float64           `json:"total_outstanding"`
}

var categoryOrder = map[models.FeeCategory]int{
	models.FeeCategoryMandatory:    0,
	models.FeeCategoryContribution: 1,
	models.FeeCategoryService:      2,
}

// ComputeBilling 关联收费项目、收据和户口，纯函数
func ComputeBilling(fees []models.FeeSchedule, receipts []models.Receipt, households []models.Household) BillingSummary {
	summary := BillingSummary{
		Fees:       make([]FeeBilling, 0, len(fees)),
		Categories: []CategoryBilling{},
	}

	index := make(map[models.FlexibleID]int, len(fees))
	for _, f := range fees {
		index[f.ID] = len(summary.Fees)
		summary.Fees = append(summary.Fees, FeeBilling{
			FeeScheduleID: f.ID,
			Name:          f.Name,
			Category:      f.Category,
			UnitPrice:     f.UnitPrice,
			Unit:          f.Unit,
		})
	}

	debtors := make(map[models.FlexibleID]struct{})
	for _, r := range receipts {
		i, ok := index[r.FeeScheduleID]
		if !ok {
			summary.OrphanReceipts++
			continue
		}
		fb := &summary.Fees[i]
		switch r.Status {
		case models.ReceiptStatusPaid:
			fb.Paid++
			fb.Collected += fb.UnitPrice
		case models.ReceiptStatusUnpaid:
			fb.Unpaid++
			fb.Outstanding += fb.UnitPrice
			debtors[r.HouseholdID] = struct{}{}
		}
	}

	byCategory := make(map[models.FeeCategory]*CategoryBilling)
	for _, fb := range summary.Fees {
		cb, ok := byCategory[fb.Category]
		if !ok {
			cb = &CategoryBilling{Category: fb.Category}
			byCategory[fb.Category] = cb
		}
		cb.Paid += fb.Paid
		cb.Unpaid += fb.Unpaid
		cb.Collected += fb.Collected
		cb.Outstanding += fb.Outstanding
		summary.TotalCollected += fb.Collected
		summary.TotalOutstanding += fb.Outstanding
	}
	for _, cb := range byCategory {
		summary.Categories = append(summary.Categories, *cb)
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		oi, iok := categoryOrder[summary.Categories[i].Category]
		oj, jok := categoryOrder[summary.Categories[j].Category]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return summary.Categories[i].Category < summary.Categories[j].Category
	})

	summary.HouseholdsWithDebt = len(debtors)
	for _, h := range households {
		if _, owes := debtors[h.ID]; !owes {
			summary.HouseholdsFullyPaid++
		}
	}

	return summary
}
