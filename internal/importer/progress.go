package importer

// 运行阶段，按执行顺序排列
const (
	StageLoad      = "load"
	StageAggregate = "aggregate"
	StageRender    = "render"
	StageDone      = "done"
)

var stageOrder = []string{StageLoad, StageAggregate, StageRender, StageDone}

// ProgressEvent 进入某个阶段时发出，Step 从 1 开始
type ProgressEvent struct {
	Stage string
	Step  int
	Steps int
}

// enterStage 通知回调进入 stage；回调为空时什么也不做
func enterStage(progress func(ProgressEvent), stage string) {
	if progress == nil {
		return
	}
	step := 0
	for i, s := range stageOrder {
		if s == stage {
			step = i + 1
			break
		}
	}
	progress(ProgressEvent{Stage: stage, Step: step, Steps: len(stageOrder)})
}
