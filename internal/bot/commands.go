package bot

import "github.com/bwmarrin/discordgo"

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "warn",
			Description: "ユーザーに警告を与える",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "対象ユーザー", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "理由", Required: false},
			},
		},
		{
			Name:        "warnings",
			Description: "ユーザーの警告履歴を表示",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "対象ユーザー", Required: true},
			},
		},
		{
			Name:        "level",
			Description: "ユーザーのレベルを表示",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "対象ユーザー", Required: false},
			},
		},
		{
			Name:        "ranking",
			Description: "サーバーのレベルランキングを表示",
		},
		{
			Name:        "poll",
			Description: "投票を作成",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "question", Description: "質問", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "options", Description: "選択肢（カンマ区切り、2〜10個）", Required: true},
			},
		},
		{
			Name:        "poll-results",
			Description: "投票結果を表示",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "poll_id", Description: "投票ID", Required: true},
			},
		},
		{
			Name:        "ticket-panel",
			Description: "チケット作成パネルを設置",
		},
		{
			Name:        "ticket-list",
			Description: "チケット一覧を表示",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "status", Description: "フィルタ",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "open", Value: "open"},
						{Name: "closed", Value: "closed"},
						{Name: "all", Value: "all"},
					},
				},
			},
		},
		{
			Name:        "close-ticket",
			Description: "チケットを強制的に閉じる",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "id", Description: "チケットID", Required: true},
			},
		},
		{
			Name:        "giveaway",
			Description: "Giveawayを開始",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "prize", Description: "賞品", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "duration", Description: "期間（例: 30m, 2h, 1d）", Required: true},
			},
		},
		{
			Name:        "quote-setting",
			Description: "名言を指定間隔で送信するチャンネルを設定",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "interval", Description: "間隔（例: 30m, 1h）", Required: true},
			},
		},
		{
			Name:        "quote-stop",
			Description: "名言の定期送信を停止",
		},
		{
			Name:        "nuke",
			Description: "チャンネルを再生成（設定を引き継ぎ）",
		},
		{
			Name:        "timenuke",
			Description: "指定した時間間隔でチャンネルを定期的に再生成",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "interval", Description: "間隔（例: 1h, 1d）", Required: true},
			},
		},
		{
			Name:        "stop-timenuke",
			Description: "定期再生成を停止",
		},
		{
			Name:        "delete",
			Description: "指定した数のメッセージを削除",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "count", Description: "削除する件数（1〜100）", Required: true},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "対象ユーザーのみ", Required: false},
			},
		},
		{
			Name:        "spam-status",
			Description: "現在のスパム検知状況を表示",
		},
		{
			Name:        "antispam-config",
			Description: "荒らし対策設定を表示・変更",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "action", Description: "操作",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "show", Value: "show"},
						{Name: "reset", Value: "reset"},
					},
				},
			},
		},
		{
			Name:        "logs",
			Description: "モデレーションログの送信先を設定",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "送信先チャンネル", Required: false},
			},
		},
	}

	for _, command := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", command); err != nil {
			return err
		}
	}
	return nil
}
