package reporting

import (
	"community-console-service/internal/domain/models"
)

// GenderDistribution 只统计 "Nam" 和 "Nữ"，其他取值计入 Unrecognized，不计入两者
type GenderDistribution struct {
	Male         int `json:"male"`
	Female       int `json:"female"`
	Unrecognized int `json:"unrecognized"`
}

// AgeBucket 年龄段，Max 为 nil 表示无上限
type AgeBucket struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   *int   `json:"max"`
	Count int    `json:"count"`
}

func (b AgeBucket) contains(age int) bool {
	return age >= b.Min && (b.Max == nil || age <= *b.Max)
}

// AgeDistribution 四个固定年龄段；没有出生日期的居民不计入分母
type AgeDistribution struct {
	Buckets          []AgeBucket `json:"buckets"`
	Denominator      int         `json:"denominator"`
	MissingBirthDate int         `json:"missing_birth_date"`
}

// StatusDistribution 暂住/暂离申请的状态分布
type StatusDistribution struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// Totals 各集合的原始数量
type Totals struct {
	Residents         int `json:"residents"`
	Households        int `json:"households"`
	TemporaryStays    int `json:"temporary_stays"`
	TemporaryAbsences int `json:"temporary_absences"`
}

// StatsSnapshot 仪表盘统计
type StatsSnapshot struct {
	Year             int                `json:"year"`
	Gender           GenderDistribution `json:"gender_distribution"`
	Age              AgeDistribution    `json:"age_distribution"`
	TemporaryStay    StatusDistribution `json:"temporary_stay_status"`
	TemporaryAbsence StatusDistribution `json:"temporary_absence_status"`
	Totals           Totals             `json:"totals"`
}

func intPtr(v int) *int { return &v }

// newAgeBuckets [0,18] [19,35] [36,60] [61,∞)
func newAgeBuckets() []AgeBucket {
	return []AgeBucket{
		{Label: "0-18", Min: 0, Max: intPtr(18)},
		{Label: "19-35", Min: 19, Max: intPtr(35)},
		{Label: "36-60", Min: 36, Max: intPtr(60)},
		{Label: "61+", Min: 61},
	}
}

// AgeAt 按年份差计算年龄，不考虑生日是否已过
func AgeAt(birth *models.Date, currentYear int) (int, bool) {
	if !birth.Defined() {
		return 0, false
	}
	return currentYear - birth.Year(), true
}

// Compute 纯函数：相同输入得到相同输出，不做任何 IO
func Compute(
	residents []models.Resident,
	households []models.Household,
	stays []models.TemporaryStayRecord,
	absences []models.TemporaryAbsenceRecord,
	currentYear int,
) StatsSnapshot {
	snap := StatsSnapshot{
		Year: currentYear,
		Age:  AgeDistribution{Buckets: newAgeBuckets()},
		Totals: Totals{
			Residents:         len(residents),
			Households:        len(households),
			TemporaryStays:    len(stays),
			TemporaryAbsences: len(absences),
		},
	}

	for i := range residents {
		r := &residents[i]

		switch r.Gender {
		case models.GenderMale:
			snap.Gender.Male++
		case models.GenderFemale:
			snap.Gender.Female++
		default:
			snap.Gender.Unrecognized++
		}

		age, ok := AgeAt(r.BirthDate, currentYear)
		if !ok {
			snap.Age.MissingBirthDate++
			continue
		}
		if age < 0 {
			// 出生年份晚于统计年份的脏数据归入最小年龄段
			age = 0
		}
		for b := range snap.Age.Buckets {
			if snap.Age.Buckets[b].contains(age) {
				snap.Age.Buckets[b].Count++
				break
			}
		}
		snap.Age.Denominator++
	}

	for _, s := range stays {
		countStatus(&snap.TemporaryStay, s.Status)
	}
	for _, a := range absences {
		countStatus(&snap.TemporaryAbsence, a.Status)
	}

	return snap
}

func countStatus(d *StatusDistribution, status models.PermitStatus) {
	switch status {
	case models.PermitStatusPending:
		d.Pending++
	case models.PermitStatusApproved:
		d.Approved++
	case models.PermitStatusRejected:
		d.Rejected++
	}
}
