package quotes

import (
	"fmt"
	"math/rand"
	"time"
)

var quotes = []string{
	"トーマス・エジソン\n「向こうはとても美しいよ。」",
	"アイザック・ニュートン\n「私はただ、海辺で貝殻を拾って遊んでいた子どもにすぎない。」",
	"チャールズ・ダーウィン\n「私は死ぬのを恐れてはいない。」",
	"ハンフリー・ボガート（俳優）\n「俺の人生で唯一の後悔は、スコッチではなくマティーニを飲んでいたことだ。」",
	"ボブ・マーリー\n「金は命を買えない。」",
	"スティーブ・ジョブズ（公式な最期の言葉かは不明）\n「Oh wow. Oh wow. Oh wow.」",
	"フランツ・カフカ\n「殺さないでくれ。僕はまだ生きていたい。」",
	"エドガー・アラン・ポー\n「主よ、私の哀れな魂を救いたまえ！」",
	"ルートヴィヒ・ヴァン・ベートーヴェン\n「諸君、喝采せよ。喜劇は終わった。」",
}

// Random returns one quote from the built-in set.
func Random() string {
	return quotes[rand.Intn(len(quotes))]
}

// Count reports the size of the quote set.
func Count() int {
	return len(quotes)
}

// FormatInterval renders an interval the way broadcast footers display it.
func FormatInterval(interval time.Duration) string {
	seconds := int(interval.Seconds())
	switch {
	case seconds >= 3600:
		return fmt.Sprintf("%dh", seconds/3600)
	case seconds >= 60:
		return fmt.Sprintf("%dm", seconds/60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// ParseInterval accepts the command forms 30s, 15m, 2h.
func ParseInterval(value string) (time.Duration, error) {
	if len(value) < 2 {
		return 0, fmt.Errorf("invalid interval %q", value)
	}
	unit := value[len(value)-1]
	var amount int
	if _, err := fmt.Sscanf(value[:len(value)-1], "%d", &amount); err != nil || amount <= 0 {
		return 0, fmt.Errorf("invalid interval %q", value)
	}
	switch unit {
	case 's':
		return time.Duration(amount) * time.Second, nil
	case 'm':
		return time.Duration(amount) * time.Minute, nil
	case 'h':
		return time.Duration(amount) * time.Hour, nil
	case 'd':
		return time.Duration(amount) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid interval unit %q", value)
	}
}
