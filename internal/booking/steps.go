package booking

type stepInfo struct {
	title       string
	description string
}

var stepCatalog = map[Step]stepInfo{
	StepLessonDetails: {"レッスン詳細", "レッスン内容の設定"},
	StepSchedule:      {"スケジュール選択", "日時の選択"},
	StepContract:      {"契約確認", "契約内容の確認"},
	StepPayment:       {"支払い確認", "料金の確認・決済"},
}

// Indicators builds the progress bar for a flow currently at step current.
func Indicators(current Step) []StepIndicator {
	out := make([]StepIndicator, 0, int(LastStep))
	for id := FirstStep; id <= LastStep; id++ {
		info := stepCatalog[id]
		out = append(out, StepIndicator{
			ID:          id,
			Title:       info.title,
			Description: info.description,
			Completed:   id < current,
			Active:      id == current,
			Clickable:   id <= current,
		})
	}
	return out
}
