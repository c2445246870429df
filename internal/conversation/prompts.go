package conversation

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/lead-agent/internal/leads"
)

// Fixed replies.
const (
	FallbackReply   = "Ops, tive um probleminha aqui. Pode repetir?"
	FallbackWelcome = "Olá! Recebemos seu contato e em breve um especialista vai falar com você pelo WhatsApp. 😊"
)

// Turn thresholds at which the instruction nudges towards the handoff.
const (
	wrapUpHintTurns = 4
	finishHintTurns = 6
)

// Persona is who the agent speaks as.
type Persona struct {
	AgentName   string
	CompanyName string
}

// DefaultPersona is used when no persona is configured.
var DefaultPersona = Persona{AgentName: "Ana", CompanyName: leads.DefaultCompanyName}

func (p Persona) withDefaults() Persona {
	if p.AgentName == "" {
		p.AgentName = DefaultPersona.AgentName
	}
	if p.CompanyName == "" {
		p.CompanyName = DefaultPersona.CompanyName
	}
	return p
}

// Greeting is the templated first message. It never calls the model.
func Greeting(lead leads.Lead) string {
	label := lead.Category.Label()
	greeting := fmt.Sprintf("Oi %s! 😊 ", lead.FirstName())
	if msg := strings.TrimSpace(lead.Message); msg != "" {
		return greeting + fmt.Sprintf("Vi que você tem interesse em %s e mencionou: \"%s\". Me conta mais sobre o que você está buscando!", label, msg)
	}
	return greeting + fmt.Sprintf("Que legal que você está interessado em consórcio de %s! Me conta, o que te motivou a buscar essa opção?", label)
}

// ClosingRemark is appended to the final reply of an interested lead.
func ClosingRemark(lead leads.Lead) string {
	return fmt.Sprintf("\n\nBom, %s, com base no que conversamos, tenho certeza que temos a opção perfeita pra você! 🎯 Um dos nossos especialistas entrará em contato em breve pelo WhatsApp!", lead.FirstName())
}

var handoffChannelTerms = []string{"whatsapp", "especialista", "contato"}

// mentionsHandoff reports whether reply already points the lead to a human.
func mentionsHandoff(reply string) bool {
	lower := strings.ToLower(reply)
	for _, term := range handoffChannelTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// Instruction builds the system instruction for one generation call.
func (p Persona) Instruction(lead leads.Lead, st State) string {
	p = p.withDefaults()
	var b strings.Builder

	fmt.Fprintf(&b, "Você é a %s, uma consultora simpática e experiente da %s. ", p.AgentName, p.CompanyName)
	b.WriteString("Seu objetivo é entender a necessidade do cliente de forma natural, como uma conversa real.\n\n")

	b.WriteString("INFORMAÇÕES DO CLIENTE:\n")
	fmt.Fprintf(&b, "- Nome: %s\n", lead.Name)
	fmt.Fprintf(&b, "- Interesse: Consórcio de %s\n", lead.Category.Label())
	initial := strings.TrimSpace(lead.Message)
	if initial == "" {
		initial = "Não informada"
	}
	fmt.Fprintf(&b, "- Dúvida inicial: %s\n\n", initial)

	b.WriteString("INFORMAÇÕES JÁ COLETADAS:\n")
	if st.Facts.EstimatedValue > 0 {
		fmt.Fprintf(&b, "- Valor aproximado: R$ %s\n", leads.FormatAmount(st.Facts.EstimatedValue))
	} else {
		b.WriteString("- Valor: ainda não informado\n")
	}
	if st.Facts.Timeline != "" {
		fmt.Fprintf(&b, "- Prazo: %s\n", st.Facts.Timeline)
	} else {
		b.WriteString("- Prazo: ainda não informado\n")
	}
	if st.Facts.MainConcern != "" {
		fmt.Fprintf(&b, "- Principal interesse: %s\n", st.Facts.MainConcern)
	}

	b.WriteString(`
REGRAS DE CONVERSA:
1. Seja natural e simpática, use no máximo 1-2 emojis por mensagem
2. Use o primeiro nome do cliente
3. Faça no máximo UMA pergunta aberta por mensagem
4. Se o cliente já informou valor ou prazo, não pergunte novamente
5. Respostas curtas (2-4 frases no máximo)

REGRA CRÍTICA - NUNCA INVENTE INFORMAÇÕES:
- NUNCA mencione valores ou prazos que não estejam em "INFORMAÇÕES JÁ COLETADAS"
- Se aparecer "ainda não informado", pergunte em vez de assumir
- Baseie-se APENAS no que está escrito no histórico da conversa
`)

	if missing := nextQuestions(st.Facts); len(missing) > 0 {
		b.WriteString("\nPERGUNTAS PARA FAZER (uma de cada vez):\n")
		for _, q := range missing {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	if st.TurnCount >= wrapUpHintTurns {
		b.WriteString("\nIMPORTANTE: A conversa está avançada. Se já tiver informações suficientes, ofereça transferir para um especialista no WhatsApp de forma natural.\n")
	}
	if st.TurnCount >= finishHintTurns {
		b.WriteString("\nMUITO IMPORTANTE: Hora de finalizar! Agradeça, resuma o que entendeu e convide para falar com um especialista no WhatsApp.\n")
	}
	return b.String()
}

func nextQuestions(f leads.Facts) []string {
	var qs []string
	if f.EstimatedValue == 0 {
		qs = append(qs, "Qual valor aproximado você está pensando?")
	}
	if f.Timeline == "" {
		qs = append(qs, "Tem algum prazo em mente?")
	}
	if f.MainConcern == "" {
		qs = append(qs, "É seu primeiro consórcio?")
	}
	return qs
}

// WelcomeInstruction asks the model for the reply shown right after intake.
func (p Persona) WelcomeInstruction(lead leads.Lead) string {
	p = p.withDefaults()
	msg := strings.TrimSpace(lead.Message)
	if msg == "" {
		msg = "Nenhuma dúvida informada"
	}
	return fmt.Sprintf(`Você é a %s, assistente virtual da %s.
Um cliente acabou de preencher o formulário de contato:
- Nome: %s
- Interesse: consórcio de %s
- Dúvida: %s

Escreva uma mensagem de boas-vindas curta (até 3 frases), cordial, em português do Brasil,
usando o primeiro nome do cliente e avisando que um especialista vai continuar o atendimento pelo WhatsApp.
Não invente valores, prazos ou condições.`, p.AgentName, p.CompanyName, lead.Name, lead.Category.Label(), msg)
}
