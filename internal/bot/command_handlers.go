package bot

import (
	"context"
)

const welcomeText = `🤖 *Welcome to ChatMate\!*

I summarize YouTube videos and web pages\.

– Send me a link to a YouTube video or any web page
– Pick the language of the video transcript \(English or Hindi\)
– Get the extracted content, a summary of about 300 words and a _summary\.txt_ file`

const noURLText = "✖️ Send me a link to a YouTube video or a web page\\."

const chooseLanguageText = "🌐 Select language:"

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	return b.sendMessage(ctx, chatID, 0, welcomeText, nil)
}
