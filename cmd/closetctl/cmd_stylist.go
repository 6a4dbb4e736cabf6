package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/closetpanel/closetpanel/internal/domain/model"
)

var (
	chatConversation string
	recommendWeather string
	recommendStyle   string
	tryOnModelURL    string
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>...",
	Short: "Ask the stylist a question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <occasion>",
	Short: "Get an outfit recommendation",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommend,
}

var tryOnCmd = &cobra.Command{
	Use:   "tryon <item-id>...",
	Short: "Render garments onto your model photo",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTryOn,
}

func init() {
	chatCmd.Flags().StringVar(&chatConversation, "conversation", "", "continue an existing conversation")
	recommendCmd.Flags().StringVar(&recommendWeather, "weather", "", "weather to dress for")
	recommendCmd.Flags().StringVar(&recommendStyle, "style", "", "preferred style")
	tryOnCmd.Flags().StringVar(&tryOnModelURL, "model", "", "URL of the uploaded model photo (required)")
	tryOnCmd.MarkFlagRequired("model")
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	reply, err := a.stylistSvc.Chat(cmd.Context(), chatConversation, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
	if chatConversation == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\n(conversation %s, pass --conversation to continue)\n", reply.ConversationID)
	}
	return nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	outfit, err := a.stylistSvc.Recommend(cmd.Context(), model.OutfitRequest{
		Occasion: args[0],
		Weather:  recommendWeather,
		Style:    recommendStyle,
	})
	if err != nil {
		return err
	}

	if len(outfit.ItemIDs) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Items:", strings.Join(outfit.ItemIDs, ", "))
	}
	fmt.Fprintln(cmd.OutOrStdout(), outfit.Advice)
	return nil
}

func runTryOn(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.stylistSvc.TryOn(cmd.Context(), model.TryOnRequest{
		ModelImageURL: tryOnModelURL,
		ItemIDs:       args,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.ImageURL)
	return nil
}
