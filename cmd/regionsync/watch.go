package main

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/minecart-tools/regionsync/internal/hub"
	"github.com/minecart-tools/regionsync/internal/sdk"
)

func init() {
	rootCmd.AddCommand(newWatchCmd())
}

func newWatchCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow daemon events live",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			client := newSDK()
			defer client.Close()

			events, err := client.Events.Connect(cmd.Context())
			if err != nil {
				exitError(err)
			}
			fmt.Println(gray.Render("connected, ctrl-c to stop"))

			for {
				select {
				case <-cmd.Context().Done():
					return
				case evt, ok := <-events:
					if !ok {
						fmt.Println(gray.Render("feed closed"))
						return
					}
					if raw {
						data, _ := json.Marshal(evt)
						fmt.Printf("%s\n", data)
						continue
					}
					printEvent(evt)
				}
			}
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print events as json")

	return cmd
}

func printEvent(evt sdk.Event) {
	stamp := gray.Render(evt.Time.Local().Format(time.TimeOnly))

	switch hub.EventType(evt.Type) {
	case hub.EventCountdown:
		var p hub.CountdownPayload
		if json.Unmarshal(evt.Payload, &p) == nil {
			fmt.Printf("%s restart in %s (%d regions queued)\n",
				stamp, yellow.Render(fmt.Sprintf("%ds", p.SecondsLeft)), p.PendingCount)
			return
		}
	case hub.EventBatchStarted:
		var p hub.BatchStartedPayload
		if json.Unmarshal(evt.Payload, &p) == nil {
			fmt.Printf("%s batch started, %d regions\n", stamp, p.Count)
			return
		}
	case hub.EventRegionSynced:
		var p hub.RegionSyncedPayload
		if json.Unmarshal(evt.Payload, &p) == nil {
			mark := green.Render("ok")
			if !p.Outcome.OK {
				mark = red.Render("failed")
			}
			fmt.Printf("%s [%d/%d] %s %s\n", stamp, p.Done, p.Total, mark, p.Outcome.Region)
			return
		}
	case hub.EventBatchFinished:
		var p hub.BatchFinishedPayload
		if json.Unmarshal(evt.Payload, &p) == nil {
			fmt.Printf("%s batch finished: %s, %s\n", stamp,
				green.Render(fmt.Sprintf("%d ok", p.OK)),
				red.Render(fmt.Sprintf("%d failed", p.Failed)))
			return
		}
	case hub.EventServiceState:
		var p hub.ServiceStatePayload
		if json.Unmarshal(evt.Payload, &p) == nil {
			fmt.Printf("%s service %s\n", stamp, cyan.Render(p.Status))
			return
		}
	case hub.EventSourceChanged:
		var p hub.SourceChangedPayload
		if json.Unmarshal(evt.Payload, &p) == nil {
			fmt.Printf("%s source changed: %s (%s)\n", stamp, p.Region, p.Path)
			return
		}
	}

	fmt.Printf("%s %s %s\n", stamp, evt.Type, string(evt.Payload))
}
