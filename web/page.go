package web

// indexPage is the parameter form, rendered with the current values.
// Submissions go through fetch so the page never reloads mid-session.
const indexPage = `<!DOCTYPE html>
<html lang='en'>
<head>
<meta charset='UTF-8'>
<meta name='viewport' content='width=device-width, initial-scale=1.0'>
<title>Double Pulse Test</title>
<style>
  body { font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4; }
  .container { max-width: 400px; margin: 0 auto; background: #fff; padding: 20px;
               border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1); }
  h2 { text-align: center; color: #333; }
  .form-group { margin-bottom: 15px; }
  .form-group label { display: block; margin-bottom: 5px; font-weight: bold; }
  .form-group input { width: 100%%; padding: 8px; box-sizing: border-box;
                      border: 1px solid #ccc; border-radius: 4px; }
  .form-group input[type='submit'] { background-color: #007bff; color: white;
                                     border: none; cursor: pointer; }
  .form-group input[type='submit']:hover { background-color: #0056b3; }
  .message { margin-top: 20px; padding: 10px; background-color: #d4edda; color: #155724;
             border: 1px solid #c3e6cb; border-radius: 4px; display: none; }
  .error { background-color: #f8d7da; color: #721c24; border: 1px solid #f5c6cb; }
</style>
<script>
  function show(text, isError) {
    const message = document.getElementById('message');
    message.textContent = text;
    message.className = isError ? 'message error' : 'message';
    message.style.display = 'block';
    if (!isError) {
      setTimeout(() => { message.style.display = 'none'; }, 3000);
    }
  }
  async function submitForm(event) {
    event.preventDefault();
    const response = await fetch('/set', {
      method: 'POST',
      body: new URLSearchParams(new FormData(event.target))
    });
    if (response.ok) {
      show('Parameters set successfully!', false);
    } else {
      show('Failed to set parameters!', true);
    }
  }
  async function triggerDPT(event) {
    event.preventDefault();
    const response = await fetch('/trigger', { method: 'GET' });
    if (response.ok) {
      show('DPT triggered successfully!', false);
    } else if (response.status === 409) {
      show('Trigger busy, try again shortly!', true);
    } else {
      show('Failed to trigger DPT!', true);
    }
  }
</script>
</head>
<body>
<div class='container'>
<h2>Double Pulse Test</h2>
<div id='message' class='message'></div>
<form onsubmit='submitForm(event)'>
<div class='form-group'>
<label for='p1h'>Pulse 1 High (us):</label>
<input type='number' id='p1h' name='p1h' value='%d'>
</div>
<div class='form-group'>
<label for='p1l'>Pulse 1 Low (us):</label>
<input type='number' id='p1l' name='p1l' value='%d'>
</div>
<div class='form-group'>
<label for='p2h'>Pulse 2 High (us):</label>
<input type='number' id='p2h' name='p2h' value='%d'>
</div>
<div class='form-group'>
<label for='p2l'>Pulse 2 Low (us):</label>
<input type='number' id='p2l' name='p2l' value='%d'>
</div>
<div class='form-group'>
<input type='submit' value='Set'>
</div>
</form>
<form onsubmit='triggerDPT(event)'>
<div class='form-group'>
<input type='submit' value='Trigger DPT'>
</div>
</form>
</div>
</body>
</html>`
