package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/example/bakongbot/internal/models"
	"github.com/example/bakongbot/internal/utils"
)

// Chat texts are bilingual Khmer/English and use Telegram HTML parse mode.

// ConfirmButtonText labels the inline button attached to every QR message.
const ConfirmButtonText = "✅ ពិនិត្យការទូទាត់ (Confirm Payment)"

// CheckingCallbackText is flashed while a button press is being handled.
const CheckingCallbackText = "កំពុងពិនិត្យស្ថានភាព..."

// UntrackedCaptionNote is appended to a QR caption once its transaction is no
// longer tracked.
const UntrackedCaptionNote = "⚠️ <b>ការទូទាត់នេះលែងត្រួតពិនិត្យបានហើយ (Expired/Completed).</b>"

const autoConfirmLine = "✅ <b>ការទូទាត់នឹងត្រូវបានបញ្ជាក់ដោយស្វ័យប្រវត្តិ ឬចុចប៊ូតុងខាងក្រោម។</b>"

// HelpMessage builds the /start and /help reply.
func HelpMessage(merchantName string, window time.Duration) string {
	return fmt.Sprintf(
		"👋 <b>សូមស្វាគមន៍មកកាន់ប្រព័ន្ធទូទាត់ (Payment Bot) របស់ %s</b>\n\n"+
			"<b>បង្កើត QR សូមចុច:</b>\n"+
			"📲 <code>/pay &lt;ទឹកប្រាក់&gt; &lt;គោលបំណង&gt; (ស្រេចចិត្ត)</code>\n\n"+
			"❕ <i>ឧទាហរណ៍:</i> <code>/pay 5000 នំ</code>\n\n"+
			"(QR នេះនឹងផុតកំណត់ក្នុងរយៈពេល <b>%d នាទី</b> ហើយនឹងត្រូវបានត្រួតពិនិត្យដោយស្វ័យប្រវត្តិ។)",
		html.EscapeString(merchantName), int(window.Minutes()),
	)
}

// CreatingMessage acknowledges a /pay command while the QR is generated.
func CreatingMessage(amount string, billNumber string) string {
	return fmt.Sprintf("កំពុងបង្កើត KHQR ទឹកប្រាក់ចំនួន %s (លេខបង្កាន់ដៃ <code>%s</code>)...", amount, billNumber)
}

// QRCaption builds the caption under a freshly issued payment QR.
func QRCaption(rec models.TransactionRecord) string {
	return captionBase(rec) + "\n\n" + autoConfirmLine
}

// UnpaidCaption rebuilds a QR caption after a manual check found the
// transaction still unpaid.
func UnpaidCaption(rec models.TransactionRecord) string {
	return captionBase(rec) + "\n\n" +
		"🔴 <b>ស្ថានភាពបច្ចុប្បន្ន: មិនទាន់បង់ប្រាក់ ❌ (UNPAID)</b>\n" +
		"❌ " + strings.TrimPrefix(autoConfirmLine, "✅ ")
}

func captionBase(rec models.TransactionRecord) string {
	var b strings.Builder
	b.WriteString("💰 <b>អាចទូទាត់ជាមួយ KHQR ខាងលើបាន</b>\n")
	b.WriteString(fmt.Sprintf("ទឹកប្រាក់ចំនួន <b>%s</b>\n", utils.FormatAmount(rec.Amount, rec.Currency)))
	if rec.Description != "" {
		b.WriteString(fmt.Sprintf("គោលបំណង: %s\n", html.EscapeString(rec.Description)))
	}
	b.WriteString(fmt.Sprintf("លេខបង្កាន់ដៃ: <code>%s</code>\n", rec.BillNumber))
	b.WriteString(fmt.Sprintf("⏰ <b>ផុតកំណត់នៅម៉ោង %s</b>", rec.ExpiresAt.Format("03:04:05 PM")))
	return b.String()
}

// PaidMessage announces a settled payment.
func PaidMessage(rec models.TransactionRecord) string {
	return fmt.Sprintf(
		"🎉 <b>បានទូទាត់រួចរាល់ហើយ! (Payment Completed)</b>\n"+
			"លេខបង្កាន់ដៃ: <code>%s</code>\n"+
			"ទឹកប្រាក់ចំនួន: <b>%s</b>\n"+
			"ស្ថានភាព: <b>PAID</b>\n"+
			"សូមអរគុណសម្រាប់ការទូទាត់!",
		rec.BillNumber, utils.FormatAmount(rec.Amount, rec.Currency),
	)
}

// ExpiredMessage announces that a QR lapsed without being paid.
func ExpiredMessage(rec models.TransactionRecord) string {
	return fmt.Sprintf(
		"❌ <b>ការទូទាត់ផុតកំណត់ (Expired)</b>\n"+
			"លេខបង្កាន់ដៃ <code>%s</code> បានផុតកំណត់ក្នុងរយៈពេល %d នាទីហើយ។\n"+
			"សូមបង្កើត QR ថ្មីដើម្បីបង់ប្រាក់។",
		rec.BillNumber, int(rec.Window().Minutes()),
	)
}

// CheckErrorMessage reports a failed status check to the user.
func CheckErrorMessage() string {
	return "⚠️ <b>កំហុសត្រួតពិនិត្យ (Check Error):</b> មានបញ្ហាក្នុងការពិនិត្យស្ថានភាពទូទាត់។"
}

// NotTrackedMessage reports a bill number that is no longer tracked. The bill
// number arrives in callback data, so it is client-controlled text.
func NotTrackedMessage(billNumber string) string {
	return fmt.Sprintf(
		"❌ <b>លេខបង្កាន់ដៃ <code>%s</code> មិនត្រូវបានតាមដានទៀតទេ។</b> (ប្រហែលជាផុតកំណត់ ឬបានទូទាត់រួចហើយ)",
		html.EscapeString(billNumber),
	)
}

// StillUnpaidMessage reports that a manually checked transaction has not
// settled yet.
func StillUnpaidMessage(billNumber string) string {
	return fmt.Sprintf(
		"🔴 <b>លេខបង្កាន់ដៃ <code>%s</code>:</b> មិនទាន់បានទូទាត់ទេ។ សូមព្យាយាមម្តងទៀតក្នុងរយៈពេលខ្លី។",
		html.EscapeString(billNumber),
	)
}

// MissingAmountMessage asks for an amount after a bare /pay.
func MissingAmountMessage() string {
	return "❗<b>កំហុស:</b> សូមបញ្ចូលទឹកប្រាក់។ <i>ឧទាហរណ៍:</i> <code>/pay 5000</code> (កុំប្រើប្រាស់សញ្ញា $ និង ៛ ឲ្យសោះ)"
}

// InvalidAmountMessage rejects an amount that failed validation.
func InvalidAmountMessage() string {
	return "❌ <b>កំហុស:</b> ទម្រង់ទឹកប្រាក់មិនត្រឹមត្រូវ។ សូមបញ្ចូលលេខតែប៉ុណ្ណោះ។"
}

// CreateFailedMessage reports that QR generation failed.
func CreateFailedMessage() string {
	return "❌ <b>កំហុស:</b> មានបញ្ហាកើតឡើងពេលបង្កើត QR។ សូមព្យាយាមម្តងទៀត។"
}
