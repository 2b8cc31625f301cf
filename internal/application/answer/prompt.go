package answer

import (
	"fmt"
	"strings"

	"campus-qa-api/internal/application/search"
)

const systemPromptTemplate = `You are the campus information assistant of the university.
Answer the student's question using ONLY the campus data below.
If the data does not contain the answer, say that you could not find it and suggest asking the relevant office.
Stay on campus topics and keep the answer brief (at most three sentences).

Campus data:
%s`

const noContext = "(no matching campus records)"

// BuildContext 按优先级顺序列出每个结果桶的表名与行内容。
// maxRows > 0 时限制写入的总行数。
func BuildContext(resp search.AggregateResponse, maxRows int) string {
	if len(resp) == 0 {
		return noContext
	}

	var sb strings.Builder
	written := 0
	for _, bucket := range resp {
		if maxRows > 0 && written >= maxRows {
			break
		}
		fmt.Fprintf(&sb, "[%s]\n", bucket.Table)
		for _, r := range bucket.Results {
			if maxRows > 0 && written >= maxRows {
				break
			}
			sb.WriteString("- ")
			sb.WriteString(r.Data.JSON())
			sb.WriteByte('\n')
			written++
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// SystemPrompt 构造系统提示词
func SystemPrompt(contextBlock string) string {
	return fmt.Sprintf(systemPromptTemplate, contextBlock)
}
