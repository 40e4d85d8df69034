package render

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: sans-serif; display: flex; height: 100vh; }
#sidebar { width: 260px; background: #202123; color: #ececf1; overflow-y: auto; }
.conversation-item { padding: 10px 12px; cursor: pointer; }
.conversation-item.active { background: #343541; }
.no-conversations { padding: 12px; color: #8e8ea0; }
.sidebar-toggle { display: none; }
#chatContainer { flex: 1; overflow-y: auto; }
.message { display: flex; gap: 12px; padding: 16px; }
.assistant-message { background: #f7f7f8; }
pre { background: #1e1e1e; color: #d4d4d4; padding: 8px; overflow-x: auto; }
#welcomeScreen { display: flex; flex-direction: column; align-items: center; justify-content: center; }
@media (max-width: 768px) {
  #sidebar { position: fixed; left: -260px; height: 100%; transition: left .2s; }
  #sidebar.open { left: 0; }
  .sidebar-toggle { display: block; }
}
</style>
</head>
<body>
<nav id="sidebar" class="sidebar{{if .SidebarOpen}} open{{end}}">
  <div id="conversationsList">
  {{- range .Conversations}}
    <div class="conversation-item{{if .Active}} active{{end}}" data-id="{{.ID}}">
      <div class="conversation-title">{{.Title}}</div>
    </div>
  {{- else}}
    <div class="no-conversations">{{.NoConversationsText}}</div>
  {{- end}}
  </div>
</nav>
<main id="chatContainer">
  <button class="sidebar-toggle" type="button"><i class="fas fa-bars"></i></button>
  {{- if .Welcome}}
  <section id="welcomeScreen" style="display: flex">
    <h1>{{.WelcomeTitle}}</h1>
  </section>
  {{- else}}
  <section id="welcomeScreen" style="display: none"></section>
  {{- end}}
  <div id="messagesContainer">
  {{- range .Messages}}
    <div class="message {{.Role}}-message">
      <div class="message-avatar {{.Role}}-avatar"><i class="{{icon .Role}}"></i></div>
      <div class="message-content">
        <div class="message-text">{{format .Segments}}</div>
      </div>
    </div>
  {{- end}}
  {{- if .Typing}}
    <div class="message assistant-message typing-message">
      <div class="message-avatar assistant-avatar"><i class="fas fa-robot"></i></div>
      <div class="message-content"><div class="typing-indicator"><span>{{.TypingText}}</span></div></div>
    </div>
  {{- end}}
  </div>
  <form>
    <textarea id="messageInput" rows="{{.InputRows}}">{{.Input}}</textarea>
    <button id="sendBtn" type="submit"{{if not .SendEnabled}} disabled{{end}}><i class="fas fa-paper-plane"></i></button>
  </form>
</main>
</body>
</html>
`
