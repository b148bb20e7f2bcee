package logger

import "github.com/ideamans/go-l10n"

// lexicon holds the Japanese translations of every log message key.
var lexicon = l10n.LexiconMap{
	// Session
	"Opening %s":                      "%s を開いています",
	"Opened %s as viewer %d":          "%s をビューア %d として開きました",
	"Closed %s":                       "%s を閉じました",
	"Sync enabled for %d viewers":     "%d 個のビューアで同期を有効にしました",
	"Sync disabled":                   "同期を無効にしました",
	"Overlay %s onto %s (%s, %.0f%%)": "%s を %s に重ねます (%s, %.0f%%)",

	// Loader
	"Decoding %s from frame %d of %d":     "%s をフレーム %d から読み込み中 (全 %d フレーム)",
	"End of stream at frame %d, wrapping": "フレーム %d でストリーム終端、先頭に戻ります",
	"Failed to close %s: %v":              "%s を閉じられませんでした: %v",

	// Viewer
	"Loaded %s: %d frames at %.2f fps":  "%s を読み込みました: %d フレーム, %.2f fps",
	"Seek to frame %d":                  "フレーム %d へシーク",
	"No frame decoded after seek to %d": "フレーム %d へのシーク後にフレームがデコードされませんでした",
	"Playback of %s stopped: %v":        "%s の再生を停止しました: %v",
	"Sync seek to %d ignored: %v":       "同期シーク %d を無視しました: %v",

	// Sync group
	"Master is now %s": "マスターは %s になりました",

	// Compositor
	"Overlay active: %s over %s, %s at %.1f": "オーバーレイ有効: %s を %s に重ねる, %s 不透明度 %.1f",
	"Overlay inactive":                       "オーバーレイ無効",

	// Notifications
	"Error: %s": "エラー: %s",

	// Decoding and snapshots
	"MP4 box probe of %s failed: %v":  "%s の MP4 ボックス解析に失敗しました: %v",
	"Wrote snapshot %s":               "スナップショット %s を保存しました",
	"Failed to write snapshot %s: %v": "スナップショット %s を保存できませんでした: %v",

	// Reports
	"Wrote report %s":               "レポート %s を保存しました",
	"Failed to write report %s: %v": "レポート %s を保存できませんでした: %v",
}

func init() {
	l10n.Register("ja", lexicon)
}
