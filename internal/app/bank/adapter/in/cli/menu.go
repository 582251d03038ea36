package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/usecase"
)

const (
	choiceCreate   = "1"
	choiceDeposit  = "2"
	choiceWithdraw = "3"
	choiceHistory  = "4"
	choiceExit     = "5"
)

var menuChoices = []Choice{
	{Key: choiceCreate, Label: "Create Account"},
	{Key: choiceDeposit, Label: "Deposit money"},
	{Key: choiceWithdraw, Label: "Withdraw money"},
	{Key: choiceHistory, Label: "Show transaction history"},
	{Key: choiceExit, Label: "Exit"},
}

const (
	msgNoAccount     = "Please create an account first."
	msgInvalidChoice = "Invalid choice. Please try again."
	msgGoodbye       = "Thank you for using the Banking App!"
)

type styles struct {
	title   lipgloss.Style
	success lipgloss.Style
	err     lipgloss.Style
	info    lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"}),
		success: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"}),
		err:     r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}),
		info:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"}),
	}
}

// Menu 互動式選單，透過 Teller 操作帳戶
type Menu struct {
	teller   *usecase.Teller
	prompter Prompter
	out      io.Writer
	styles   styles
}

func NewMenu(teller *usecase.Teller, prompter Prompter, out io.Writer) *Menu {
	return &Menu{
		teller:   teller,
		prompter: prompter,
		out:      out,
		styles:   newStyles(out),
	}
}

// Run 重複顯示選單直到使用者選擇離開或輸入結束
//
// 單一操作的錯誤只會印出，不會中斷選單。
//
// 回傳:
//
//	error: 讀取輸入失敗 (輸入結束不算錯誤)
func (m *Menu) Run(ctx context.Context) error {
	for {
		m.println(m.styles.title.Render("Welcome to our bank"))
		choice, err := m.prompter.Choose("Choose an option: ", menuChoices)
		if err != nil {
			return m.finish(err)
		}

		switch choice {
		case choiceCreate:
			err = m.createAccount(ctx)
		case choiceDeposit:
			err = m.deposit(ctx)
		case choiceWithdraw:
			err = m.withdraw(ctx)
		case choiceHistory:
			err = m.showHistory(ctx)
		case choiceExit:
			m.println("Exiting application...")
			return m.finish(nil)
		default:
			m.println(m.styles.err.Render(msgInvalidChoice))
		}

		if errors.Is(err, io.EOF) {
			return m.finish(err)
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) finish(err error) error {
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	m.println(msgGoodbye)
	return nil
}

func (m *Menu) createAccount(ctx context.Context) error {
	m.println("Creating your new account...")
	owner, err := m.prompter.Input("Enter account holder name: ")
	if err != nil {
		return err
	}
	if err := m.teller.OpenAccount(ctx, owner); err != nil {
		m.fail(err)
		return nil
	}
	m.println(m.styles.success.Render("Account created successfully!"))
	return nil
}

func (m *Menu) deposit(ctx context.Context) error {
	if !m.hasAccount() {
		return nil
	}
	text, err := m.prompter.Input("Enter deposit amount: ")
	if err != nil {
		return err
	}
	msg, err := m.teller.Deposit(ctx, domain.ParseAmount(text))
	if err != nil {
		m.fail(err)
		return nil
	}
	m.println(m.styles.info.Render(msg))
	m.println(m.styles.success.Render("Money deposited!"))
	return nil
}

func (m *Menu) withdraw(ctx context.Context) error {
	if !m.hasAccount() {
		return nil
	}
	text, err := m.prompter.Input("Enter withdrawal amount: ")
	if err != nil {
		return err
	}
	msg, err := m.teller.Withdraw(ctx, domain.ParseAmount(text))
	if err != nil {
		m.fail(err)
		return nil
	}
	m.println(m.styles.info.Render(msg))
	m.println(m.styles.success.Render("Money withdrawn!"))
	return nil
}

func (m *Menu) showHistory(ctx context.Context) error {
	statement, err := m.teller.Statement(ctx)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.println(m.styles.title.Render("Transaction History:"))
	PrintStatement(m.out, statement)
	return nil
}

func (m *Menu) hasAccount() bool {
	if _, err := m.teller.Owner(); err != nil {
		m.fail(err)
		return false
	}
	return true
}

func (m *Menu) fail(err error) {
	if errors.Is(err, domain.ErrNoAccount) {
		m.println(m.styles.err.Render(msgNoAccount))
		return
	}
	m.println(m.styles.err.Render(err.Error()))
}

func (m *Menu) println(s string) {
	_, _ = fmt.Fprintln(m.out, s)
}

// PrintHistory 以表格印出交易紀錄
func PrintHistory(w io.Writer, history []domain.Transaction) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "TIME", "KIND", "AMOUNT", "ID")
	for i, tran := range history {
		t.Row(
			fmt.Sprint(i+1),
			tran.CreatedAt().Format("2006-01-02 15:04:05"),
			string(tran.Kind()),
			domain.FormatAmount(tran.Amount()),
			tran.ID().String(),
		)
	}
	_, _ = fmt.Fprintln(w, t.Render())
}

// PrintStatement 印出交易紀錄與對帳單總額
func PrintStatement(w io.Writer, s usecase.Statement) {
	if s.Owner != "" {
		_, _ = fmt.Fprintf(w, "Account holder: %s\n", s.Owner)
	}
	if s.Count() == 0 {
		_, _ = fmt.Fprintln(w, "No transactions yet.")
	} else {
		PrintHistory(w, s.Transactions)
	}
	_, _ = fmt.Fprintf(w, "Transactions: %d  Deposits: %s  Withdrawals: %s  Net: %s\n",
		s.Count(), s.Deposits.String(), s.Withdrawals.String(), s.Net.String())
	_, _ = fmt.Fprintf(w, "Balance: %s\n", domain.FormatAmount(s.Balance))
}
