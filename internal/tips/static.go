package tips

import (
	"context"
	"fmt"

	"orcamento/internal/core"
)

// staticGenerator derives tips from simple rules over the budget figures.
// It is used when no AI provider is configured and as the fallback for one.
type staticGenerator struct{}

// NewStatic returns the rule-based Generator.
func NewStatic() Generator { return staticGenerator{} }

func (staticGenerator) Generate(_ context.Context, req Request) ([]Tip, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	income := req.TotalIncome

	var out []Tip
	if req.RemainingBalance < 0 {
		out = append(out, Tip{
			Title: "Saldo no vermelho",
			Description: fmt.Sprintf("Seus gastos superam a renda em %s. Revise primeiro as despesas pontuais e adie compras que não são essenciais.",
				core.FormatBRL(-req.RemainingBalance)),
		})
	}

	var biggest core.FixedExpenseCategory
	var biggestAmount float64
	for _, c := range req.FixedExpenses {
		if c.ID == core.SavingsCategoryID {
			continue
		}
		if amt := core.CategoryAmount(c, income); amt > biggestAmount {
			biggest, biggestAmount = c, amt
		}
	}
	if share := biggestAmount / income * 100; share >= 30 {
		out = append(out, Tip{
			Title: fmt.Sprintf("Atenção com %s", biggest.Name),
			Description: fmt.Sprintf("%s consome %.0f%% da sua renda. Compare fornecedores e renegocie contratos para reduzir esse valor.",
				biggest.Name, share),
		})
	}

	var oneTime float64
	for _, e := range req.OneTimeExpenses {
		oneTime += e.Value
	}
	if oneTime > income*0.1 {
		out = append(out, Tip{
			Title: "Controle os gastos pontuais",
			Description: fmt.Sprintf("As despesas pontuais somam %s este mês. Defina um limite mensal para elas e anote cada compra.",
				core.FormatBRL(oneTime)),
		})
	}

	if req.RemainingBalance > income*0.2 {
		out = append(out, Tip{
			Title: "Invista o excedente",
			Description: fmt.Sprintf("Sobram %s no mês. Direcione parte desse valor para um investimento atrelado ao CDI assim que o salário cair.",
				core.FormatBRL(req.RemainingBalance)),
		})
	}

	out = append(out,
		Tip{
			Title:       "Reserva de emergência",
			Description: fmt.Sprintf("Mantenha uma reserva equivalente a seis meses de despesas, cerca de %s para o seu padrão atual.", core.FormatBRL((income-req.RemainingBalance)*6)),
		},
		Tip{
			Title:       "Revise assinaturas",
			Description: "Cancele serviços de streaming e aplicativos que você não usou no último mês.",
		},
	)

	return cleanTips(out), nil
}

// noneGenerator is used when tips are disabled.
type noneGenerator struct{}

// NewNone returns a Generator that always fails with ErrDisabled.
func NewNone() Generator { return noneGenerator{} }

func (noneGenerator) Generate(context.Context, Request) ([]Tip, error) {
	return nil, ErrDisabled
}
