// Package main provides localization for the reelsync CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Synchronized frame-accurate playback and comparison of video and image sequences": "動画と画像シーケンスのフレーム単位の同期再生と比較",

		// Commands
		"Play media files side by side": "メディアファイルを並べて再生",
		"Show media information":        "メディア情報を表示",
		"Blend two still images":        "2枚の静止画をブレンド",
		"Show version information":      "バージョン情報を表示",
		"reelsync version %s":           "reelsync バージョン %s",

		// Play flags
		"Media files or image directories.":                       "メディアファイルまたは画像ディレクトリ。",
		"YAML configuration file.":                                "YAML設定ファイル。",
		"Synchronize playback across viewers.":                    "ビューア間で再生を同期する。",
		"Frame rate applied to every viewer after loading.":       "読み込み後に全ビューアへ適用するフレームレート。",
		"Speed multiplier applied to every viewer after loading.": "読み込み後に全ビューアへ適用する再生速度倍率。",
		"Stop after this long (0 runs until interrupted).":        "指定時間後に停止（0 は中断まで実行）。",
		"Read console commands from stdin.":                       "標準入力からコンソールコマンドを読み込む。",
		"Slot of the viewer that shows the blend.":                "ブレンド結果を表示するビューアの番号。",
		"Slot of the viewer blended on top.":                      "上に重ねるビューアの番号。",
		"Blend mode (Normal, Add, Multiply, Screen, Difference).": "ブレンドモード（Normal, Add, Multiply, Screen, Difference）。",
		"Overlay opacity from 0 to 1.":                            "オーバーレイの不透明度（0〜1）。",
		"Directory for PNG snapshots of displayed frames.":        "表示フレームのPNGスナップショット保存先。",
		"Write one snapshot every N frames.":                      "Nフレームごとにスナップショットを1枚保存。",
		"Path to the ffmpeg executable.":                          "ffmpeg実行ファイルのパス。",
		"Path to the ffprobe executable.":                         "ffprobe実行ファイルのパス。",
		"Log level (debug, info, warn, error).":                   "ログレベル（debug, info, warn, error）。",
		"Suppress all log output.":                                "全てのログ出力を抑制。",

		// Probe and blend flags
		"Media file or image directory.":    "メディアファイルまたは画像ディレクトリ。",
		"Base image.":                       "ベース画像。",
		"Image blended on top.":             "上に重ねる画像。",
		"Output image path (.png or .jpg).": "出力画像パス（.png または .jpg）。",
		"JPEG quality from 1 to 100.":       "JPEG品質（1〜100）。",

		// Probe output
		"File":                               "ファイル",
		"Kind":                               "種別",
		"Codec":                              "コーデック",
		"Size":                               "サイズ",
		"Frames":                             "フレーム数",
		"Rate":                               "フレームレート",
		"Duration":                           "再生時間",
		"File size":                          "ファイルサイズ",
		"unknown, playback uses the default": "不明（再生時は既定値を使用）",

		// Report flag
		"Write a Markdown playback summary to this file (- for stdout).": "再生サマリーをMarkdownでこのファイルに書き出す（- で標準出力）。",

		// Report
		"Playback Summary": "再生サマリー",
		"Generated":        "生成日時",
		"Elapsed":          "経過時間",
		"Sync":             "同期",
		"On":               "オン",
		"Off":              "オフ",
		"Viewers":          "ビューア",
		"None":             "なし",
		"Role":             "役割",
		"Media":            "メディア",
		"Frame":            "フレーム",
		"State":            "状態",
		"Decoded":          "デコード数",
		"master":           "マスター",
		"follower":         "フォロワー",
		"playing":          "再生中",
		"paused":           "一時停止",
		"Buffer waits":     "バッファ待ち",
		"Loops":            "ループ回数",
		"Overlay":          "オーバーレイ",
		"Sources":          "ソース",
		"over":             "→",
		"Blend":            "ブレンド",
		"Blended frames":   "ブレンド済みフレーム",

		// Runtime messages
		"Output saved to %s":            "出力を %s に保存しました",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
	})
}
