package tips

import (
	"encoding/json"
	"fmt"
	"strings"

	"orcamento/internal/core"
)

const systemPrompt = "Você é um consultor financeiro amigável. Responda SOMENTE com um objeto JSON válido no formato " +
	`{"tips":[{"title":"...","description":"..."}]}` + ", sem markdown nem texto adicional."

// BuildPrompt renders the budget figures into the user prompt.
func BuildPrompt(req Request) string {
	var fixed strings.Builder
	for _, c := range req.FixedExpenses {
		fmt.Fprintf(&fixed, "- %s: %s\n", c.Name, core.FormatBRL(core.CategoryAmount(c, req.TotalIncome)))
	}
	if fixed.Len() == 0 {
		fixed.WriteString("Nenhuma despesa fixa.\n")
	}

	var oneTime strings.Builder
	for _, e := range req.OneTimeExpenses {
		fmt.Fprintf(&oneTime, "- %s: %s\n", e.Name, core.FormatBRL(e.Value))
	}
	if oneTime.Len() == 0 {
		oneTime.WriteString("Nenhuma despesa pontual.\n")
	}

	return fmt.Sprintf(`Analise o orçamento mensal de um usuário no Brasil.

Renda mensal total: %s
Despesas fixas:
%sDespesas pontuais:
%sSaldo restante: %s

Gere %d dicas de economia curtas, práticas e personalizadas para essa situação.
Se uma categoria pesa muito na renda, sugira alternativas mais baratas.
Se o saldo restante é baixo ou negativo, priorize cortes em despesas.
Se o saldo é alto, sugira como investir melhor o excedente.`,
		core.FormatBRL(req.TotalIncome),
		fixed.String(),
		oneTime.String(),
		core.FormatBRL(req.RemainingBalance),
		TipCount)
}

// parseTips decodes a provider's JSON answer.
func parseTips(content string) ([]Tip, error) {
	content = cleanMarkdownWrapper(content)

	var resp struct {
		Tips []Tip `json:"tips"`
	}
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	out := cleanTips(resp.Tips)
	if len(out) == 0 {
		return nil, ErrNoTips
	}
	return out, nil
}

// cleanMarkdownWrapper strips a ```json fence some models add around JSON.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}
