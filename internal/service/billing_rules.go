package service

import (
	"time"

	"lessonloop/backend/internal/model"
)

// ── 分期账单归集 ─────────────────────────────────────────────
//
// 职责：把课程序列按频率归集为分期账单草稿。
//
// 设计决策：
//   - daily: 每课一期
//   - weekly: 按所在周（周一锚）分组
//   - four_weekly: 按 floor(距首课周数 / 4) 分组 —— 以首课日期
//     为锚而非自然月，月中入学的学生首期仍是完整周期
//   - 单价 <= 0 不拦截（金额为 0 的账单照常生成，校验归调用方）
//   - 空课程序列 → 空账单序列
// ─────────────────────────────────────────────────────────────

// InstallmentDraft 归集得到的一期账单（未持久化）
type InstallmentDraft struct {
	Number      int // 期数，按时间顺序从 1 开始
	Amount      float64
	DueDate     time.Time // 该期最后一课的日期
	LessonCount int
	Frequency   string
	Status      string
}

// AggregateInstallments 将课程序列按频率归集为账单草稿序列
//
// 不变量：每次课恰好落入一期；期数连续；DueDate 非递减。
// 未知频率返回空序列（频率合法性由调用方先行校验）。
func AggregateInstallments(occs []LessonOccurrence, pricePerLesson float64, frequency string) []InstallmentDraft {
	if len(occs) == 0 {
		return nil
	}

	// 各频率的分桶键：同键的相邻课程归入同一期
	var bucketKey func(occ LessonOccurrence) time.Time
	switch frequency {
	case model.FrequencyDaily:
		bucketKey = func(occ LessonOccurrence) time.Time { return occ.Date }
	case model.FrequencyWeekly:
		bucketKey = func(occ LessonOccurrence) time.Time { return weekBucketKey(occ.Date) }
	case model.FrequencyFourWeekly:
		first := occs[0].Date
		bucketKey = func(occ LessonOccurrence) time.Time {
			weeks := int(occ.Date.Sub(first).Hours()/24) / 7
			return first.AddDate(0, 0, (weeks/4)*28)
		}
	default:
		return nil
	}

	var drafts []InstallmentDraft
	var cur *InstallmentDraft
	var curKey time.Time

	for _, occ := range occs {
		key := bucketKey(occ)
		if cur == nil || !key.Equal(curKey) {
			drafts = append(drafts, InstallmentDraft{
				Number:    len(drafts) + 1,
				Frequency: frequency,
				Status:    model.InstallmentUnpaid,
			})
			cur = &drafts[len(drafts)-1]
			curKey = key
		}
		cur.LessonCount++
		cur.Amount = float64(cur.LessonCount) * pricePerLesson
		cur.DueDate = occ.Date
	}

	return drafts
}
