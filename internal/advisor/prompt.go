package advisor

import (
	"fmt"
	"strings"
)

const promptRole = `あなたはテキストアドベンチャーゲームのエキスパートプレイヤーです。
現在の状況と利用可能なアクションから、最適な行動を1つ選択してください。
`

const promptGoal = `
【目標】
ゲームをクリアすることです。状況を分析し、利用可能なアクションの中から最適なものを1つ選んでください。
`

// The parser also accepts "Reasoning:" / "Action:" and the fullwidth colon.
const promptFormat = `
【回答形式】
次の2行だけで答えてください。アクションは利用可能なアクションリストから一字一句そのまま選んでください。

理由: <短い一文>
選択: <アクション>
`

// BuildPrompt renders the advisor prompt for one decision.
func BuildPrompt(in SuggestInput) string {
	var b strings.Builder
	b.WriteString(promptRole)

	b.WriteString("\n【現在の状況】\n")
	b.WriteString(in.Observation)
	b.WriteString("\n")

	b.WriteString("\n【利用可能なアクション】\n")
	for _, action := range in.AvailableActions {
		fmt.Fprintf(&b, "- %s\n", action)
	}

	fmt.Fprintf(&b, "\n【現在のスコア】\n%d\n", in.Score)

	if instr := strings.TrimSpace(in.UserInstruction); instr != "" {
		fmt.Fprintf(&b, "\n【プレイヤーの指示】\n%s\n", instr)
	}

	b.WriteString(promptGoal)
	b.WriteString(promptFormat)
	return b.String()
}
